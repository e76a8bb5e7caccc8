package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// 导出文件名
const (
	DetailedFileName = "hammadde_analizi_detayli.csv"
	SummaryFileName  = "hammadde_analizi_sube_ozeti.csv"
	WorkbookFileName = "hammadde_analizi.xlsx"
)

// Report 导出报表类型
type Report string

const (
	ReportDetailed Report = "detailed"
	ReportSummary  Report = "summary"
)

// FileName 报表对应的文件名
func (r Report) FileName() string {
	if r == ReportSummary {
		return SummaryFileName
	}
	return DetailedFileName
}

// ParseReport 解析报表类型
func ParseReport(s string) (Report, bool) {
	switch Report(s) {
	case ReportDetailed, ReportSummary:
		return Report(s), true
	default:
		return "", false
	}
}

var (
	detailedHeader = []string{
		"Şube", "Hammadde", "Birim",
		"Alınan Miktar (HAVI Şube)", "Hesaplanan Kullanım (POS Şube)",
		"Fark", "Fark (%)",
	}
	summaryHeader = []string{
		"Şube", "İl", "Toplam Kalem",
		"Fazla Kullanım (Adet)", "Fazla Sipariş (Adet)", "Yakın Eşleşme (Adet)",
		"Toplam Eksik (gr)", "Toplam Fazla (gr)",
		"Toplam Eksik (adet)", "Toplam Fazla (adet)",
		"Karşılaştırılamayan",
	}
)

// DetailedRows 明细报表的表头与数据行
func DetailedRows(results []model.BranchResult) [][]string {
	f := newFormatter()
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, detailedHeader)
	for _, r := range results {
		diff, pct := notAvailable, notAvailable
		if r.Comparable() {
			diff = f.Optional(r.Difference, 2)
			pct = Percent(r)
		}
		rows = append(rows, []string{
			r.Branch,
			r.Resource,
			r.Unit,
			f.Number(r.SuppliedAmount, 2),
			f.Number(r.DemandAmount, 2),
			diff,
			pct,
		})
	}
	return rows
}

// SummaryRows 门店汇总报表的表头与数据行；个数合计不保留小数
func SummaryRows(summaries []model.BranchSummary) [][]string {
	f := newFormatter()
	rows := make([][]string, 0, len(summaries)+1)
	rows = append(rows, summaryHeader)
	for _, s := range summaries {
		province := s.Province
		if province == "" {
			province = unknownProvince
		}
		rows = append(rows, []string{
			s.Branch,
			province,
			strconv.Itoa(s.TotalItemsAnalyzed),
			strconv.Itoa(s.DeficitCount),
			strconv.Itoa(s.SurplusCount),
			strconv.Itoa(s.NearMatchCount),
			f.Number(s.TotalDeficitGr, 2),
			f.Number(s.TotalSurplusGr, 2),
			f.Number(s.TotalDeficitAdet, 0),
			f.Number(s.TotalSurplusAdet, 0),
			strconv.Itoa(s.IncomparableUnitCount),
		})
	}
	return rows
}

// WriteDetailedCSV 写出明细 CSV
func WriteDetailedCSV(w io.Writer, results []model.BranchResult) error {
	return writeCSV(w, DetailedRows(results))
}

// WriteSummaryCSV 写出门店汇总 CSV
func WriteSummaryCSV(w io.Writer, summaries []model.BranchSummary) error {
	return writeCSV(w, SummaryRows(summaries))
}

// DetailedCSV 明细 CSV 内容
func DetailedCSV(results []model.BranchResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDetailedCSV(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryCSV 门店汇总 CSV 内容
func SummaryCSV(summaries []model.BranchSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, summaries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeCSV 含逗号、引号或换行的字段自动加引号转义
func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
