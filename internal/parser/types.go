package parser

import "github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"

// Role 列角色
type Role string

const (
	RoleBranch        Role = "branch"
	RoleProduct       Role = "product"
	RoleIngredient    Role = "ingredient"
	RoleAmount        Role = "amount"
	RoleUnit          Role = "unit"
	RoleDate          Role = "date"
	RoleInvoiceNumber Role = "invoiceNumber"
)

// Shape 内容形态兜底规则
type Shape int

const (
	ShapeNone         Shape = iota // 不做内容推断
	ShapeRepeatedText              // 文本且重复度高（门店）
	ShapeDistinctText              // 文本且基数较高（商品/原料）
	ShapeNumeric                   // 数值或可解析为数值的文本（数量）
)

// RoleSpec 单个角色的识别规则
type RoleSpec struct {
	Role     Role
	Exact    []string   // 表头精确匹配（不区分大小写）
	Contains [][]string // 表头子串匹配：任一组内的词全部出现即命中
	Shape    Shape
}

// Mapping 角色 -> 列名
type Mapping map[Role]string

// Column 获取角色对应列
func (m Mapping) Column(role Role) (string, bool) {
	col, ok := m[role]
	return col, ok
}

// Missing 返回未识别的必需角色
func (m Mapping) Missing(required ...Role) []Role {
	var missing []Role
	for _, role := range required {
		if _, ok := m[role]; !ok {
			missing = append(missing, role)
		}
	}
	return missing
}

// SourceRecognition 数据源类型识别结果
type SourceRecognition struct {
	Kind       model.SourceKind `json:"kind"`
	Confidence float64          `json:"confidence"` // 置信度 0-1
	Mapping    Mapping          `json:"mapping"`
}

// 收银报表（AktifPOS）列规则
var SalesRoles = []RoleSpec{
	{
		Role:     RoleBranch,
		Exact:    []string{"şube", "sube", "branch", "mağaza", "magaza"},
		Contains: [][]string{{"şube"}, {"sube"}, {"branch"}, {"mağaza"}, {"magaza"}, {"location"}, {"store"}},
		Shape:    ShapeRepeatedText,
	},
	{
		Role:     RoleProduct,
		Exact:    []string{"ürün", "urun", "product", "ürün adı", "urun adi", "item"},
		Contains: [][]string{{"ürün"}, {"urun"}, {"product"}, {"item"}},
		Shape:    ShapeDistinctText,
	},
	{
		Role:     RoleAmount,
		Exact:    []string{"miktar", "adet", "amount", "quantity", "qty", "satış adedi", "satis adedi"},
		Contains: [][]string{{"miktar"}, {"adet"}, {"amount"}, {"quantity"}, {"qty"}, {"satış"}, {"satis"}},
		Shape:    ShapeNumeric,
	},
}

// 供货明细（HAVI）列规则
var SupplyRoles = []RoleSpec{
	{
		Role:     RoleDate,
		Exact:    []string{"invoice date", "invoice-date"},
		Contains: [][]string{{"fatura", "tarih"}, {"invoice", "date"}},
	},
	{
		Role:     RoleInvoiceNumber,
		Exact:    []string{"invoice nr", "invoice-nr"},
		Contains: [][]string{{"fatura", "no"}, {"invoice", "nr"}},
	},
	{
		Role:     RoleBranch,
		Exact:    []string{"cust-desc"},
		Contains: [][]string{{"müşteri"}, {"musteri"}, {"şube"}, {"sube"}},
		Shape:    ShapeRepeatedText,
	},
	{
		Role:     RoleProduct,
		Exact:    []string{"adfc-desc"},
		Contains: [][]string{{"ürün"}, {"urun"}, {"malzeme"}},
		Shape:    ShapeDistinctText,
	},
	{
		Role:     RoleAmount,
		Exact:    []string{"faturadaki miktar"},
		Contains: [][]string{{"miktar"}, {"amount"}},
		Shape:    ShapeNumeric,
	},
}

// 配方列规则
var RecipeRoles = []RoleSpec{
	{
		Role:     RoleProduct,
		Exact:    []string{"ürün", "urun", "ürün adı", "urun adi"},
		Contains: [][]string{{"ürün"}, {"urun"}},
	},
	{
		Role:     RoleIngredient,
		Exact:    []string{"hammadde", "malzeme"},
		Contains: [][]string{{"hammadde"}, {"malzeme"}},
	},
	{
		Role:     RoleAmount,
		Exact:    []string{"miktar"},
		Contains: [][]string{{"miktar"}},
	},
	{
		Role:     RoleUnit,
		Exact:    []string{"birim"},
		Contains: [][]string{{"birim"}},
	},
}
