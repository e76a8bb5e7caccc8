package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrNoSheet           = errors.New("no sheet found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Format 文件格式
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html" // 收银系统导出的 .xls 实际上常是 HTML 表格
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Reader 表格读取器：读取第一个工作表，第 0 行为表头，
// 每条记录附带 "Dosya Adı" 源文件名字段
type Reader struct{}

// NewReader 创建表格读取器
func NewReader() *Reader {
	return &Reader{}
}

// DetectFormat 根据文件内容判断格式
func DetectFormat(fileName string, data []byte) (Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyInput
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	if bytes.HasPrefix(data, oleMagic) {
		return "", fmt.Errorf("%w: legacy binary xls, save as xlsx", ErrUnsupportedFormat)
	}
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	lower := bytes.ToLower(head)
	if bytes.Contains(lower, []byte("<table")) || bytes.Contains(lower, []byte("<html")) {
		return FormatHTML, nil
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return "", fmt.Errorf("%w: corrupted workbook", ErrUnsupportedFormat)
	}
	return FormatCSV, nil
}

// Read 读取文件内容为表格
func (r *Reader) Read(fileName string, data []byte) (model.Table, error) {
	format, err := DetectFormat(fileName, data)
	if err != nil {
		return model.Table{}, err
	}

	var rows [][]any
	sheetName := ""
	switch format {
	case FormatXLSX:
		sheetName, rows, err = readXLSX(data)
	case FormatHTML:
		rows, err = readHTML(decodeText(data))
	default:
		rows, err = readCSV(decodeText(data))
	}
	if err != nil {
		return model.Table{}, err
	}

	table := buildTable(fileName, rows)
	table.SheetName = sheetName
	if len(table.Columns) == 0 {
		return model.Table{}, fmt.Errorf("%w: no header row", ErrEmptyInput)
	}
	return table, nil
}

func readXLSX(data []byte) (string, [][]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrNoSheet
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	rows := make([][]any, len(raw))
	for i, cells := range raw {
		row := make([]any, len(cells))
		for j, cell := range cells {
			row[j] = typedCell(f, sheet, i, j, cell)
		}
		rows[i] = row
	}
	return sheet, rows, nil
}

// typedCell 按单元格类型还原数值与布尔值；表头与文本保持字符串
func typedCell(f *excelize.File, sheet string, row, col int, value string) any {
	if row == 0 || value == "" {
		return value
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return value
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return value
	}
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeDate:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return ExcelSerialToDate(v)
		}
	}
	return value
}

func readHTML(text string) ([][]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoSheet
	}

	var rows [][]any
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []any
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, textCell(condense(cell.Text())))
		})
		rows = append(rows, row)
	})
	return rows, nil
}

func readCSV(text string) ([][]any, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			v = strings.TrimSpace(v)
			if i == 0 {
				row[j] = v
				continue
			}
			row[j] = textCell(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// buildTable 以第一个非空行为表头构造记录；空表头用列字母命名，空行跳过
func buildTable(fileName string, rows [][]any) model.Table {
	table := model.Table{SourceName: fileName}

	start := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return table
	}

	width := 0
	for _, row := range rows[start:] {
		if len(row) > width {
			width = len(row)
		}
	}

	header := rows[start]
	columns := make([]string, width)
	used := make(map[string]int, width)
	for j := 0; j < width; j++ {
		label := ""
		if j < len(header) {
			label = strings.TrimSpace(model.ValueText(header[j]))
		}
		if label == "" {
			label, _ = excelize.ColumnNumberToName(j + 1)
		}
		if n, ok := used[label]; ok {
			used[label] = n + 1
			label = fmt.Sprintf("%s_%d", label, n+1)
		} else {
			used[label] = 0
		}
		columns[j] = label
	}
	table.Columns = columns

	for _, row := range rows[start+1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(model.Record, width+1)
		for j, col := range columns {
			if j < len(row) && row[j] != nil {
				rec[col] = row[j]
			} else {
				rec[col] = ""
			}
		}
		rec[model.FileNameColumn] = fileName
		table.Records = append(table.Records, rec)
	}
	return table
}

func isBlankRow(row []any) bool {
	for _, v := range row {
		if strings.TrimSpace(model.ValueText(v)) != "" {
			return false
		}
	}
	return true
}

// textCell 文本单元格：纯数字（点作小数点）转为 float64，其余保持字符串
func textCell(v string) any {
	if v == "" {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && LooksNumeric(v) {
		return f
	}
	return v
}

// decodeText 去掉 BOM；非 UTF-8 内容按 Windows-1254（土耳其语）解码
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	out, _, err := transform.Bytes(charmap.Windows1254.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func detectDelimiter(text string) rune {
	line := text
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		line = text[:idx]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ','} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func condense(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
