package model

import "strings"

// SourceKind 数据源类型
type SourceKind string

const (
	SourceRecipe SourceKind = "recipe" // 配方（Reçete）
	SourceSupply SourceKind = "supply" // 供货（HAVI）
	SourceSales  SourceKind = "sales"  // 收银（AktifPOS）
)

// 项目完成步骤序号
const (
	StepRecipe   = 0
	StepSupply   = 1
	StepSales    = 2
	StepAnalysis = 3
	StepCount    = 4
)

// 单位
const (
	UnitGram    = "gr"
	UnitCount   = "adet"
	UnitUnknown = "unknown"
)

// ParseSourceKind 解析数据源类型，兼容原始数据源名称
func ParseSourceKind(s string) (SourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recipe", "recete", "reçete":
		return SourceRecipe, true
	case "supply", "havi":
		return SourceSupply, true
	case "sales", "aktifpos", "pos":
		return SourceSales, true
	default:
		return "", false
	}
}

// StepIndex 数据源对应的完成步骤
func (k SourceKind) StepIndex() int {
	switch k {
	case SourceRecipe:
		return StepRecipe
	case SourceSupply:
		return StepSupply
	case SourceSales:
		return StepSales
	default:
		return -1
	}
}

// Label 缺数据提示用的名称
func (k SourceKind) Label() string {
	switch k {
	case SourceRecipe:
		return "Reçete verisi"
	case SourceSupply:
		return "HAVI verisi"
	case SourceSales:
		return "AktifPOS verisi"
	default:
		return string(k)
	}
}

// NormalizeUnit 单位规范化："gram"（不区分大小写）统一为 "gr"
func NormalizeUnit(unit string) string {
	u := strings.TrimSpace(unit)
	if strings.EqualFold(u, "gram") {
		return UnitGram
	}
	return u
}

// IsComparableUnit 只有 gr 与 adet 可以定量比较
func IsComparableUnit(unit string) bool {
	return unit == UnitGram || unit == UnitCount
}

// Entity 三类数据源的统一规范化形态
type Entity struct {
	SourceBranch string  `json:"sourceBranch,omitempty"` // 原始门店名（配方无）
	Product      string  `json:"product,omitempty"`
	Ingredient   string  `json:"ingredientOrResource,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Date         string  `json:"date,omitempty"` // YYYY-MM-DD
}

// RecipeItem 配方行：每售出一份商品消耗的原料量
type RecipeItem struct {
	Product    string  `json:"product"`
	Ingredient string  `json:"ingredient"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
}

// Entity 统一形态
func (r RecipeItem) Entity() Entity {
	return Entity{Product: r.Product, Ingredient: r.Ingredient, Quantity: r.Amount, Unit: r.Unit}
}

// SupplyEntry 供货汇总行
type SupplyEntry struct {
	Date        string  `json:"invoiceDate"`
	Branch      string  `json:"branch"`            // 去掉 CHL 前缀后的门店名
	Resource    string  `json:"cleanResourceName"` // 标准原料名
	Amount      float64 `json:"amount"`            // 包装数
	TotalAmount float64 `json:"totalAmount"`       // 总克数或总个数
	Unit        string  `json:"unit"`
}

// Entity 统一形态
func (s SupplyEntry) Entity() Entity {
	return Entity{SourceBranch: s.Branch, Ingredient: s.Resource, Quantity: s.Amount, Unit: s.Unit, Date: s.Date}
}

// SalesEntry 收银汇总行
type SalesEntry struct {
	Date    string  `json:"date"`              // 报表起始日期
	EndDate string  `json:"endDate,omitempty"` // 报表结束日期
	Branch  string  `json:"branch"`
	Product string  `json:"product"`
	Amount  float64 `json:"amount"`
}

// Entity 统一形态
func (s SalesEntry) Entity() Entity {
	return Entity{SourceBranch: s.Branch, Product: s.Product, Quantity: s.Amount, Unit: UnitCount, Date: s.Date}
}

// Dataset 某一类数据源的规范化结果
type Dataset interface {
	Kind() SourceKind
	Len() int
	Entities() []Entity
}

// RecipeSet 配方数据集
type RecipeSet []RecipeItem

func (s RecipeSet) Kind() SourceKind { return SourceRecipe }
func (s RecipeSet) Len() int         { return len(s) }

func (s RecipeSet) Entities() []Entity {
	out := make([]Entity, len(s))
	for i, r := range s {
		out[i] = r.Entity()
	}
	return out
}

// SupplySet 供货数据集
type SupplySet []SupplyEntry

func (s SupplySet) Kind() SourceKind { return SourceSupply }
func (s SupplySet) Len() int         { return len(s) }

func (s SupplySet) Entities() []Entity {
	out := make([]Entity, len(s))
	for i, r := range s {
		out[i] = r.Entity()
	}
	return out
}

// SalesSet 收银数据集
type SalesSet []SalesEntry

func (s SalesSet) Kind() SourceKind { return SourceSales }
func (s SalesSet) Len() int         { return len(s) }

func (s SalesSet) Entities() []Entity {
	out := make([]Entity, len(s))
	for i, r := range s {
		out[i] = r.Entity()
	}
	return out
}
