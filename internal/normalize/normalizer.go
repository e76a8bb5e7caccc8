package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	kgTokenRe        = regexp.MustCompile(`(?i)\d+\s*kg\b`)
	grTokenRe        = regexp.MustCompile(`(?i)\d+\s*gr\b`)
	trailingNumRe    = regexp.MustCompile(`\s+\d+$`)
	paketPrefixRe    = regexp.MustCompile(`^PAKET\s+`)
	chlPrefixRe      = regexp.MustCompile(`(?i)^CHL\s*`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	separatorToSpace = strings.NewReplacer("_", " ", "-", " ")

	// 土耳其字母 -> ASCII；U+0307 是小写 İ 分解后残留的组合点
	turkishFold = strings.NewReplacer(
		"İ", "I", "ı", "i",
		"Ğ", "G", "ğ", "g",
		"Ü", "U", "ü", "u",
		"Ş", "S", "ş", "s",
		"Ö", "O", "ö", "o",
		"Ç", "C", "ç", "c",
		"\u0307", "",
	)
)

const branchCafeSuffix = " CAFE"

// Normalizer 名称规范化器：原料名、门店名、商品名
// 所有方法都是纯函数，任何输入都返回结果
type Normalizer struct {
	tables *Tables

	resourceKeys []string
	productKeys  []string
	products     map[string]string
	canonical    map[string]string
	overrides    map[string]string
	exceptions   map[string]string
}

// New 使用给定查找表创建规范化器
func New(tables *Tables) *Normalizer {
	if tables == nil {
		tables = &Tables{}
	}
	n := &Normalizer{
		tables:       tables,
		resourceKeys: make([]string, len(tables.Resources)),
		productKeys:  make([]string, len(tables.Products)),
		products:     make(map[string]string, len(tables.Products)),
		canonical:    make(map[string]string, len(tables.Products)+len(tables.ProductOverrides)),
		overrides:    make(map[string]string, len(tables.ProductOverrides)),
		exceptions:   make(map[string]string, len(tables.BranchExceptions)),
	}
	for i, e := range tables.Resources {
		n.resourceKeys[i] = strings.ToLower(norm.NFC.String(e.Pattern))
	}
	for i, e := range tables.Products {
		key := strings.ToUpper(norm.NFC.String(e.Pattern))
		n.productKeys[i] = key
		// 重复键保留第一条
		if _, ok := n.products[key]; !ok {
			n.products[key] = e.Name
		}
	}
	for _, e := range tables.ProductOverrides {
		n.overrides[e.Pattern] = e.Name
	}
	for _, list := range [][]Entry{tables.Products, tables.ProductOverrides} {
		for _, e := range list {
			key := strings.ToUpper(norm.NFC.String(e.Name))
			if _, ok := n.canonical[key]; !ok && key != "" {
				n.canonical[key] = e.Name
			}
		}
	}
	for _, e := range tables.BranchExceptions {
		n.exceptions[e.Pattern] = e.Name
	}
	return n
}

// Default 使用内置查找表的规范化器
func Default() *Normalizer {
	return New(MustDefaultTables())
}

// Tables 返回当前使用的查找表
func (n *Normalizer) Tables() *Tables {
	return n.tables
}

// MatchResource 按表顺序查找第一个命中的原料模式
func (n *Normalizer) MatchResource(raw string) (Entry, bool) {
	lower := strings.ToLower(strings.TrimSpace(norm.NFC.String(raw)))
	if lower == "" {
		return Entry{}, false
	}
	for i, key := range n.resourceKeys {
		if key != "" && strings.Contains(lower, key) {
			return n.tables.Resources[i], true
		}
	}
	return Entry{}, false
}

// IsTrackedResource 供货品名是否在原料表中（供货白名单）
func (n *Normalizer) IsTrackedResource(raw string) bool {
	_, ok := n.MatchResource(raw)
	return ok
}

// Ingredient 规范化原料/物料名
// 未命中查找表时，去掉重量标记后转大写返回
func (n *Normalizer) Ingredient(raw string) string {
	if e, ok := n.MatchResource(raw); ok {
		return e.Name
	}

	cleaned := norm.NFC.String(raw)
	cleaned = removeFirst(kgTokenRe, cleaned)
	cleaned = removeFirst(grTokenRe, cleaned)
	cleaned = trailingNumRe.ReplaceAllString(cleaned, "")
	return strings.ToUpper(strings.TrimSpace(cleaned))
}

// Product 规范化收银商品名
// 已经是表中规范名的输入原样返回，不再做包含匹配：Product(Product(s)) == Product(s)
func (n *Normalizer) Product(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(norm.NFC.String(raw)))
	s = paketPrefixRe.ReplaceAllString(s, "")
	s = collapseSpaces(s)

	if v, ok := n.canonical[s]; ok {
		return v
	}
	if v, ok := n.overrides[s]; ok {
		return v
	}
	if v, ok := n.products[s]; ok {
		return v
	}
	if s == "" {
		return s
	}
	for i, key := range n.productKeys {
		if key != "" && strings.Contains(s, key) {
			return n.tables.Products[i].Name
		}
	}
	return s
}

// Branch 规范化门店名
// 先把土耳其字母转成 ASCII 再大写，去掉 CHL 前缀与 CAFE 后缀，最后按表还原已知城市名。
// 结果满足幂等：Branch(Branch(s)) == Branch(s)
func (n *Normalizer) Branch(raw string) string {
	s := FoldTurkish(norm.NFC.String(raw))
	s = strings.ToUpper(s)
	s = separatorToSpace.Replace(s)
	s = collapseSpaces(s)
	s = stripBranchAffixes(s)

	if v, ok := n.exceptions[s]; ok {
		return v
	}
	for _, e := range n.tables.BranchPrefixes {
		if strings.HasPrefix(s, e.Pattern) {
			s = e.Name + s[len(e.Pattern):]
			break
		}
	}
	for _, e := range n.tables.BranchSuffixes {
		if strings.HasSuffix(s, e.Pattern) {
			s = s[:len(s)-len(e.Pattern)] + e.Name
			break
		}
	}
	return s
}

// StripBranchPrefix 去掉供货/收银数据门店名上的 CHL 前缀
func StripBranchPrefix(raw string) string {
	return strings.TrimSpace(chlPrefixRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// Province 门店所在省份：规范化门店名的第一个词
func Province(branch string) string {
	fields := strings.Fields(branch)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// IngredientKey 对账用原料键：大写并把 İ 统一为 I
func IngredientKey(name string) string {
	key := strings.ToUpper(norm.NFC.String(name))
	key = strings.ReplaceAll(key, "İ", "I")
	key = strings.ReplaceAll(key, "\u0307", "")
	return strings.TrimSpace(key)
}

// FoldTurkish 把土耳其特有字母替换为 ASCII 字母
func FoldTurkish(s string) string {
	return turkishFold.Replace(s)
}

// stripBranchAffixes 反复去掉 CAFE 后缀与 CHL 前缀直到不再变化
func stripBranchAffixes(s string) string {
	for {
		prev := s
		s = strings.TrimSuffix(s, branchCafeSuffix)
		s = chlPrefixRe.ReplaceAllString(s, "")
		s = collapseSpaces(s)
		if s == prev {
			return s
		}
	}
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
