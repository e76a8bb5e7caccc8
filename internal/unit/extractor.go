package unit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// 液体密度（g/mL）
const (
	SyrupDensity   = 1.35
	SauceDensity   = 1.35
	PureeDensity   = 1.1
	DefaultDensity = 1.0

	moninBottleML       = 700
	moninOtherDensity   = 1.3
	kruvasanSadeCount   = 17
	kruvasanPeynirCount = 18
)

var (
	ml700Re           = regexp.MustCompile(`700\s*ml`)
	lt189Re           = regexp.MustCompile(`1[.,]89\s*lt`)
	lt1Re             = regexp.MustCompile(`1\s*lt`)
	krep750x8Re       = regexp.MustCompile(`750\s*gr\s*x\s*8\s*ad`)
	commaKgRe         = regexp.MustCompile(`(\d+),(\d+)\s*kg`)
	mlRe              = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ml`)
	ltRe              = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*lt`)
	grTimesAdRe       = regexp.MustCompile(`(\d+)\s*gr\s*x\s*(\d+)\s*ad`)
	grPerAdRe         = regexp.MustCompile(`(\d+)\s*gr/ad`)
	xCountRe          = regexp.MustCompile(`x\s*(\d+)\s*ad`)
	countRe           = regexp.MustCompile(`(\d+)\s*ad`)
	kgRe              = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kg\b`)
	grRe              = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*gr\b`)
	trailingNumberRe  = regexp.MustCompile(`\s(\d+)$`)
	kruvasanKeywords  = []string{"kruvasan", "kuruvasan"}
	chocolateKeywords = []string{"kuvertur", "çikolata", "cikolata", "callebout", "barlo"}
	coffeeKeywords    = []string{"kahve", "espresso", "cekirdek"}
	nutKeywords       = []string{"antep fistik", "antep fıstık", "badem", "findik", "fındık"}
)

// Quantity 单个包装的基础数量
// Unit 为 gr 时 Base 是每包克数，为 adet 时是每包个数
type Quantity struct {
	Base float64 `json:"baseQuantity"`
	Unit string  `json:"unit"`
	Rule string  `json:"rule"` // 命中的规则名，便于排查
}

// Total 供货总量：包装数 × 每包基础数量
func (q Quantity) Total(declared float64) float64 {
	return declared * q.Base
}

type input struct {
	raw      string
	lower    string
	declared float64
}

type rule struct {
	name  string
	apply func(in input) (Quantity, bool)
}

// 规则按顺序匹配，先具体后一般，第一个命中的规则生效
var rules = []rule{
	{"special", special},
	{"comma-kg", commaKilogram},
	{"volume-ml", milliliter},
	{"volume-lt", liter},
	{"gr-x-ad", gramsTimesCount},
	{"gr-per-ad", gramsPerItem},
	{"kruvasan", kruvasanCount},
	{"mass", mass},
	{"trailing-number", trailingNumber},
	{"category", categoryDefault},
}

// Extract 从供货品名中解析每包数量与单位
// declared 为发票上的包装数；没有规则命中时返回 declared 本身（单位 gr）
func Extract(description string, declared float64) Quantity {
	if math.IsNaN(declared) || math.IsInf(declared, 0) {
		declared = 0
	}
	in := input{raw: description, lower: strings.ToLower(description), declared: declared}
	for _, r := range rules {
		if q, ok := r.apply(in); ok {
			q.Rule = r.name
			return q
		}
	}
	return Quantity{Base: declared, Unit: model.UnitGram, Rule: "fallback"}
}

// Density 按品类关键字选择液体密度
func Density(name string) float64 {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "surup", "syrup", "sirup"):
		return SyrupDensity
	case containsAny(lower, "sos", "sauce"):
		return SauceDensity
	case containsAny(lower, "pure", "püre"):
		return PureeDensity
	default:
		return DefaultDensity
	}
}

// IsCountProduct 按个计数的品类（可颂）
func IsCountProduct(name string) bool {
	return containsAny(strings.ToLower(name), kruvasanKeywords...)
}

// CountQuantity 可颂类品名的每包个数，跳过前面的克数规则；其他品名返回 false
func CountQuantity(description string) (Quantity, bool) {
	q, ok := kruvasanCount(input{raw: description, lower: strings.ToLower(description)})
	if ok {
		q.Rule = "kruvasan"
	}
	return q, ok
}

func grams(v float64) Quantity {
	return Quantity{Base: v, Unit: model.UnitGram}
}

// special 已知包装规格特殊的 SKU
func special(in input) (Quantity, bool) {
	s := in.lower
	has12 := strings.Contains(s, "12ad") || strings.Contains(s, "12 ad")
	switch {
	case (strings.Contains(s, "festipak sivi bitk.santi") || strings.Contains(s, "ambiante sivi bitk.santi")) && has12:
		return grams(12000), true
	case strings.Contains(s, "barlo dec. chocol bitter bukle"):
		return grams(1000), true
	case strings.Contains(s, "krep kirigi") && krep750x8Re.MatchString(s):
		return grams(750 * 8), true
	}

	if !strings.Contains(s, "monin") {
		return Quantity{}, false
	}
	switch {
	case ml700Re.MatchString(s):
		if containsAny(s, "surup", "syrup") {
			return grams(moninBottleML * SyrupDensity), true
		}
		return grams(moninBottleML * moninOtherDensity), true
	case containsAny(s, "cikolata sos", "chocolate sauce") && lt189Re.MatchString(s):
		return grams(1890 * SauceDensity), true
	case containsAny(s, "carkifelek", "passion") && strings.Contains(s, "pure") && lt1Re.MatchString(s):
		return grams(1000 * PureeDensity), true
	}
	return Quantity{}, false
}

// commaKilogram "2,750 KG" -> 2750 gr
func commaKilogram(in input) (Quantity, bool) {
	m := commaKgRe.FindStringSubmatch(in.lower)
	if m == nil {
		return Quantity{}, false
	}
	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return Quantity{}, false
	}
	frac, err := strconv.ParseFloat("0."+m[2], 64)
	if err != nil {
		return Quantity{}, false
	}
	return grams((float64(whole) + frac) * 1000), true
}

func milliliter(in input) (Quantity, bool) {
	m := mlRe.FindStringSubmatch(in.lower)
	if m == nil {
		return Quantity{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, false
	}
	return grams(v * Density(in.lower)), true
}

func liter(in input) (Quantity, bool) {
	m := ltRe.FindStringSubmatch(in.lower)
	if m == nil {
		return Quantity{}, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return Quantity{}, false
	}
	return grams(v * 1000 * Density(in.lower)), true
}

// gramsTimesCount "250gr x 30ad" -> 7500 gr
func gramsTimesCount(in input) (Quantity, bool) {
	m := grTimesAdRe.FindStringSubmatch(in.lower)
	if m == nil {
		return Quantity{}, false
	}
	per, err1 := strconv.Atoi(m[1])
	count, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return Quantity{}, false
	}
	return grams(float64(per * count)), true
}

// gramsPerItem "90 GR/AD"：每件克数 × 发票数量
func gramsPerItem(in input) (Quantity, bool) {
	m := grPerAdRe.FindStringSubmatch(in.lower)
	if m == nil {
		return Quantity{}, false
	}
	per, err := strconv.Atoi(m[1])
	if err != nil {
		return Quantity{}, false
	}
	return grams(float64(per) * in.declared), true
}

// kruvasanCount 可颂按个计数；名称里没有每包个数时使用已知默认值
func kruvasanCount(in input) (Quantity, bool) {
	if !containsAny(in.lower, kruvasanKeywords...) {
		return Quantity{}, false
	}
	count := 0
	m := xCountRe.FindStringSubmatch(in.lower)
	if m == nil {
		m = countRe.FindStringSubmatch(in.lower)
	}
	if m != nil {
		count, _ = strconv.Atoi(m[1])
	}
	if count == 0 {
		count = defaultKruvasanCount(in.raw)
	}
	return Quantity{Base: float64(count), Unit: model.UnitCount}, true
}

func defaultKruvasanCount(raw string) int {
	// 土耳其语小写："I" -> "ı"，同时用普通小写兜底
	names := []string{cases.Lower(language.Turkish).String(raw), strings.ToLower(raw)}
	for _, name := range names {
		if strings.Contains(name, "kruvasan") && strings.Contains(name, "sade") {
			return kruvasanSadeCount
		}
	}
	for _, name := range names {
		if containsAny(name, kruvasanKeywords...) && containsAny(name, "üç peynirli", "uc peynirli") {
			return kruvasanPeynirCount
		}
	}
	return 1
}

func mass(in input) (Quantity, bool) {
	if m := kgRe.FindStringSubmatch(in.lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return grams(v * 1000), true
		}
	}
	if m := grRe.FindStringSubmatch(in.lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return grams(v), true
		}
	}
	return Quantity{}, false
}

// trailingNumber 品名末尾的裸数字：巧克力、咖啡、坚果类为公斤，其余为克
func trailingNumber(in input) (Quantity, bool) {
	m := trailingNumberRe.FindStringSubmatch(in.raw)
	if m == nil {
		return Quantity{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Quantity{}, false
	}
	if isKilogramFamily(in.lower) {
		return grams(float64(n) * 1000), true
	}
	return grams(float64(n)), true
}

func categoryDefault(in input) (Quantity, bool) {
	switch {
	case containsAny(in.lower, coffeeKeywords...):
		return grams(in.declared * 1000), true
	case strings.Contains(in.lower, "monin"):
		return grams(moninBottleML * SyrupDensity), true
	}
	return Quantity{}, false
}

func isKilogramFamily(lower string) bool {
	return containsAny(lower, chocolateKeywords...) ||
		containsAny(lower, coffeeKeywords...) ||
		containsAny(lower, nutKeywords...)
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
