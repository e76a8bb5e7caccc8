package exporter

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

const (
	notAvailable    = "N/A"
	noPercent       = "-"
	unknownProvince = "Bilinmiyor"
)

// formatter 土耳其语数字格式（千位分隔为 "."，小数点为 ","）
type formatter struct {
	p *message.Printer
}

func newFormatter() formatter {
	return formatter{p: message.NewPrinter(language.Turkish)}
}

// Number 最多保留 digits 位小数
func (f formatter) Number(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	// 避免输出 "-0"
	if math.Abs(v) < 0.5*math.Pow10(-digits) {
		v = 0
	}
	return f.p.Sprint(number.Decimal(v, number.MaxFractionDigits(digits)))
}

// Optional 未定义的值输出 N/A
func (f formatter) Optional(v *float64, digits int) string {
	if v == nil {
		return notAvailable
	}
	return f.Number(*v, digits)
}

// Percent 一位小数的百分比，未定义或无穷时输出 "-"
func Percent(r model.BranchResult) string {
	if r.DifferencePercent == nil || math.IsInf(*r.DifferencePercent, 0) || math.IsNaN(*r.DifferencePercent) {
		return noPercent
	}
	return fmt.Sprintf("%.1f%%", *r.DifferencePercent)
}
