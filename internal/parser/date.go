package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 报表日期区间："01.03.2025 - 31.03.2025"，分隔符可为 . / -
var dateRangeRe = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{4})\s*[-—–]\s*(\d{1,2})[./-](\d{1,2})[./-](\d{4})`)

// Excel 序列日期 25569 = 1970-01-01
const excelEpochSerial = 25569

// DateRange 报表覆盖的日期区间
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartISO 起始日期 YYYY-MM-DD
func (r DateRange) StartISO() string {
	return r.Start.Format(time.DateOnly)
}

// EndISO 结束日期 YYYY-MM-DD
func (r DateRange) EndISO() string {
	return r.End.Format(time.DateOnly)
}

// ExtractDateRange 从字符串中提取日期区间（日.月.年 格式）
func ExtractDateRange(text string) (DateRange, bool) {
	m := dateRangeRe.FindStringSubmatch(text)
	if len(m) < 7 {
		return DateRange{}, false
	}
	start, ok := buildDate(m[1], m[2], m[3])
	if !ok {
		return DateRange{}, false
	}
	end, ok := buildDate(m[4], m[5], m[6])
	if !ok {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// FindDateRange 依次在多个候选文本中查找日期区间
func FindDateRange(candidates ...string) (DateRange, bool) {
	for _, c := range candidates {
		if r, ok := ExtractDateRange(c); ok {
			return r, true
		}
	}
	return DateRange{}, false
}

// CurrentMonthRange 当前自然月（第一天到最后一天）
func CurrentMonthRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return DateRange{Start: start, End: end}
}

// ExcelSerialToDate Excel 序列日期转日期（UTC）
func ExcelSerialToDate(serial float64) time.Time {
	days := serial - excelEpochSerial
	sec := math.Round(days * 86400)
	return time.Unix(int64(sec), 0).UTC()
}

var dateLayouts = []string{
	time.DateOnly,
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
}

// FormatDate 任意单元格值转 YYYY-MM-DD
// time.Time 与 Excel 序列数字直接转换；字符串尝试常见格式，无法识别时原样返回
func FormatDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.DateOnly)
	case float64:
		return ExcelSerialToDate(x).Format(time.DateOnly)
	case int:
		return ExcelSerialToDate(float64(x)).Format(time.DateOnly)
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(time.DateOnly)
			}
		}
		return s
	default:
		return ""
	}
}

func buildDate(day, month, year string) (time.Time, bool) {
	d, err1 := strconv.Atoi(day)
	m, err2 := strconv.Atoi(month)
	y, err3 := strconv.Atoi(year)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// 拒绝 31.02 这类溢出日期
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}
