package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FileNameColumn 表格读取时给每条记录附加的源文件名字段
const FileNameColumn = "Dosya Adı"

// Record 一行表格数据：列名 -> 标量值
// 值类型为 string / float64 / bool / time.Time，缺失为 nil
type Record map[string]any

// Table 表格读取器的输出（只取第一个工作表）
type Table struct {
	SourceName string   `json:"sourceName"` // 上传文件名
	SheetName  string   `json:"sheetName"`  // 工作表名
	Columns    []string `json:"columns"`    // 表头（第 0 行），保持原始顺序
	Records    []Record `json:"records"`    // 数据行
}

// Len 数据行数
func (t Table) Len() int {
	return len(t.Records)
}

// Text 单元格的字符串形式，缺失时为空串
func (r Record) Text(column string) string {
	return ValueText(r[column])
}

// IsBlank 单元格为空（nil 或空白字符串）
func (r Record) IsBlank(column string) bool {
	return strings.TrimSpace(r.Text(column)) == ""
}

// ValueText 标量值转字符串
func ValueText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

// PromoteHeader 把第 index 条记录提升为表头，返回其后的记录
// 用于表头不在第一行的表格（例如上方有标题行）
func (t Table) PromoteHeader(index int) Table {
	if index < 0 || index >= len(t.Records) {
		return t
	}

	headerRow := t.Records[index]
	columns := make([]string, len(t.Columns))
	used := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		label := strings.TrimSpace(headerRow.Text(col))
		if label == "" {
			label = col
		}
		columns[i] = uniqueLabel(used, label)
	}

	records := make([]Record, 0, len(t.Records)-index-1)
	for _, rec := range t.Records[index+1:] {
		next := make(Record, len(rec))
		for i, col := range t.Columns {
			if v, ok := rec[col]; ok {
				next[columns[i]] = v
			}
		}
		if v, ok := rec[FileNameColumn]; ok {
			next[FileNameColumn] = v
		}
		records = append(records, next)
	}

	return Table{
		SourceName: t.SourceName,
		SheetName:  t.SheetName,
		Columns:    columns,
		Records:    records,
	}
}

// FileName 记录上的源文件名；没有时回退到表的 SourceName
func (t Table) FileName() string {
	if len(t.Records) > 0 {
		if name := t.Records[0].Text(FileNameColumn); name != "" {
			return name
		}
	}
	return t.SourceName
}

// uniqueLabel 重名表头追加 _N，与读取时的去重方式一致
func uniqueLabel(used map[string]int, label string) string {
	n, ok := used[label]
	if !ok {
		used[label] = 0
		return label
	}
	for {
		n++
		next := fmt.Sprintf("%s_%d", label, n)
		if _, taken := used[next]; !taken {
			used[label] = n
			used[next] = 0
			return next
		}
	}
}
