package parser

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 取字符串开头的数字部分（与表格软件里常见的宽松解析一致："12 adet" -> 12）
var numberPrefixRe = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber 宽松数值解析
// 支持 float64/int；字符串中的逗号视为小数点，只取前缀数字
func ParseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		return ParseNumber(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		return ParseNumberString(x)
	case bool, time.Time, nil:
		return 0, false
	default:
		return 0, false
	}
}

// ParseNumberString 解析数值字符串，"2,5" -> 2.5，"12abc" -> 12
func ParseNumberString(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	m := numberPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsNumeric 值是否为数值或可解析为数值的字符串
func IsNumeric(v any) bool {
	_, ok := ParseNumber(v)
	return ok
}

// AmountOrZero 数量解析，失败或为负时返回 0
func AmountOrZero(v any) float64 {
	f, ok := ParseNumber(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

var strictNumberRe = regexp.MustCompile(`^[+-]?(\d+([.,]\d+)?|[.,]\d+)$`)

// LooksNumeric 整个字符串是否就是一个数字（允许逗号小数）
func LooksNumeric(s string) bool {
	return strictNumberRe.MatchString(strings.TrimSpace(s))
}
