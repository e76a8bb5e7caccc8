package model

// BranchResult 门店 × 原料的对账结果（按需计算，不落盘）
type BranchResult struct {
	Branch            string   `json:"branch"`                      // 规范化门店名
	Province          string   `json:"province,omitempty"`          // 门店名第一个词
	Resource          string   `json:"resource"`                    // 展示用原料名
	ResourceKey       string   `json:"resourceKey"`                 // 对账键
	Unit              string   `json:"unit"`                        // gr / adet / 其他（不可比较）
	SuppliedAmount    float64  `json:"suppliedAmount"`              // 供货量（HAVI）
	DemandAmount      float64  `json:"demandAmount"`                // 理论用量（POS × 配方）
	Difference        *float64 `json:"difference,omitempty"`        // 供货 - 用量；不可比较单位为空
	DifferencePercent *float64 `json:"differencePercent,omitempty"` // 差异 / 供货 × 100；无法计算时为空
	PercentInfinite   bool     `json:"percentInfinite,omitempty"`   // 供货为 0 且有用量（负无穷，展示为空）
}

// Comparable 单位是否可比较
func (r BranchResult) Comparable() bool {
	return IsComparableUnit(r.Unit)
}

// DifferenceValue 差异值，未定义时为 0
func (r BranchResult) DifferenceValue() float64 {
	if r.Difference == nil {
		return 0
	}
	return *r.Difference
}

// BranchSummary 门店汇总
type BranchSummary struct {
	Branch                string  `json:"branch"`
	Province              string  `json:"province,omitempty"`
	TotalItemsAnalyzed    int     `json:"totalItemsAnalyzed"`
	DeficitCount          int     `json:"deficitCount"`   // 用量超出供货 10% 以上
	SurplusCount          int     `json:"surplusCount"`   // 供货超出用量 10% 以上
	NearMatchCount        int     `json:"nearMatchCount"` // 差异在 ±10% 之内
	TotalDeficitGr        float64 `json:"totalDeficitGr"`
	TotalSurplusGr        float64 `json:"totalSurplusGr"`
	TotalDeficitAdet      float64 `json:"totalDeficitAdet"`
	TotalSurplusAdet      float64 `json:"totalSurplusAdet"`
	IncomparableUnitCount int     `json:"incomparableUnitCount"`
}

// IngredientTotal 所有门店合计的原料理论用量
type IngredientTotal struct {
	Ingredient  string  `json:"ingredient"`
	TotalAmount float64 `json:"totalAmount"`
	Unit        string  `json:"unit"`
}
