package exporter

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// 工作表名称
const (
	SheetDetailed = "Detaylı Analiz"
	SheetSummary  = "Şube Özeti"
	SheetTotals   = "Hammadde Toplamları"
)

// WorkbookData 导出工作簿所需的数据
type WorkbookData struct {
	Results   []model.BranchResult
	Summaries []model.BranchSummary
	Totals    []model.IngredientTotal // 为空时不生成原料合计表
}

// WorkbookOptions 导出选项
type WorkbookOptions struct {
	Progress func(ProgressEvent)
}

type workbookStyles struct {
	header  int
	amount  int
	count   int
	percent int
}

// Workbook 生成包含明细与门店汇总的工作簿
func Workbook(data WorkbookData, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	progress := newProgressReporter(opts.Progress)

	progress.report(0, "准备工作簿", "")
	if err := f.SetSheetName("Sheet1", SheetDetailed); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	styles, err := newWorkbookStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	progress.report(10, "写入明细", SheetDetailed)
	if err := writeDetailedSheet(f, styles, data.Results, progress); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetDetailed, err)
	}

	progress.report(60, "写入门店汇总", SheetSummary)
	if err := writeSummarySheet(f, styles, data.Summaries); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetSummary, err)
	}

	if len(data.Totals) > 0 {
		progress.report(85, "写入原料合计", SheetTotals)
		if err := writeTotalsSheet(f, styles, data.Totals); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("写入 %s 失败: %w", SheetTotals, err)
		}
	}

	f.SetActiveSheet(0)
	progress.report(100, "完成", "")
	return f, nil
}

// WorkbookBytes 生成工作簿并序列化
func WorkbookBytes(data WorkbookData, opts WorkbookOptions) ([]byte, error) {
	f, err := Workbook(data, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	amountFmt := "#,##0.##"
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}
	countFmt := "#,##0"
	if s.count, err = f.NewStyle(&excelize.Style{CustomNumFmt: &countFmt}); err != nil {
		return s, fmt.Errorf("failed to create count style: %w", err)
	}
	percentFmt := `0.0"%"`
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt}); err != nil {
		return s, fmt.Errorf("failed to create percent style: %w", err)
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, styles workbookStyles, header []string) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, styles.header); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeDetailedSheet(f *excelize.File, styles workbookStyles, results []model.BranchResult, progress *progressReporter) error {
	sheet := SheetDetailed
	if err := writeHeader(f, sheet, styles, detailedHeader); err != nil {
		return err
	}
	for i, r := range results {
		rowNum := i + 2
		var diff, pct interface{} = notAvailable, notAvailable
		if r.Comparable() {
			if r.Difference != nil {
				diff = round(*r.Difference, 2)
			}
			pct = noPercent
			if r.DifferencePercent != nil {
				pct = round(*r.DifferencePercent, 1)
			}
		}
		row := []interface{}{r.Branch, r.Resource, r.Unit, round(r.SuppliedAmount, 2), round(r.DemandAmount, 2), diff, pct}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", rowNum), fmt.Sprintf("F%d", rowNum), styles.amount); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("G%d", rowNum), fmt.Sprintf("G%d", rowNum), styles.percent); err != nil {
			return err
		}
		progress.rows(i+1, len(results), 10, 60, "写入明细", sheet)
	}
	if err := f.SetColWidth(sheet, "A", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", 8); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "D", "G", 18); err != nil {
		return err
	}
	if len(results) > 0 {
		return f.AutoFilter(sheet, fmt.Sprintf("A1:G%d", len(results)+1), nil)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, styles workbookStyles, summaries []model.BranchSummary) error {
	sheet := SheetSummary
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, styles, summaryHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		rowNum := i + 2
		province := s.Province
		if province == "" {
			province = unknownProvince
		}
		row := []interface{}{
			s.Branch, province, s.TotalItemsAnalyzed,
			s.DeficitCount, s.SurplusCount, s.NearMatchCount,
			round(s.TotalDeficitGr, 2), round(s.TotalSurplusGr, 2),
			math.Round(s.TotalDeficitAdet), math.Round(s.TotalSurplusAdet),
			s.IncomparableUnitCount,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("G%d", rowNum), fmt.Sprintf("H%d", rowNum), styles.amount); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("I%d", rowNum), fmt.Sprintf("J%d", rowNum), styles.count); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "K", 16)
}

func writeTotalsSheet(f *excelize.File, styles workbookStyles, totals []model.IngredientTotal) error {
	sheet := SheetTotals
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, styles, []string{"Hammadde", "Toplam Kullanım", "Birim"}); err != nil {
		return err
	}
	for i, t := range totals {
		rowNum := i + 2
		row := []interface{}{t.Ingredient, t.TotalAmount, t.Unit}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", rowNum), fmt.Sprintf("B%d", rowNum), styles.amount); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "C", 16)
}

func round(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
