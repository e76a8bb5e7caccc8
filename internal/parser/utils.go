package parser

import (
	"regexp"
	"strings"
)

var labelSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名：去除首尾空格、换行，压缩空白，转小写
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	name = labelSpaceRe.ReplaceAllString(name, " ")
	// 大写 İ 直接转 i，避免 ToLower 产生组合点
	name = strings.ReplaceAll(name, "İ", "i")
	return strings.ToLower(name)
}

// ContainsAll 检查字符串是否包含全部关键词
func ContainsAll(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}
