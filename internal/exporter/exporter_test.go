package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

func ptr(v float64) *float64 { return &v }

func sampleResults() []model.BranchResult {
	return []model.BranchResult{
		{Branch: `ANKARA "MERKEZ"`, Province: "ANKARA", Resource: "SÜT, TAM YAĞLI", Unit: "gr",
			SuppliedAmount: 1234.5, DemandAmount: 1000, Difference: ptr(234.5), DifferencePercent: ptr(18.99675)},
		{Branch: "IZMIR ALSANCAK", Province: "IZMIR", Resource: "KRUVASAN SADE", Unit: "adet",
			SuppliedAmount: 0, DemandAmount: 8, Difference: ptr(-8), PercentInfinite: true},
		{Branch: "IZMIR ALSANCAK", Province: "IZMIR", Resource: "PEÇETE", Unit: "koli", SuppliedAmount: 3},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFormatter(t *testing.T) {
	t.Parallel()
	f := newFormatter()

	assert.Equal(t, "1.234,5", f.Number(1234.5, 2))
	assert.Equal(t, "1.234.567,89", f.Number(1234567.891, 2))
	assert.Equal(t, "-400", f.Number(-400, 2))
	assert.Equal(t, "0", f.Number(-0.001, 2))
	assert.Equal(t, "8", f.Number(7.6, 0))
	assert.Equal(t, notAvailable, f.Optional(nil, 2))

	assert.Equal(t, "19.0%", Percent(model.BranchResult{DifferencePercent: ptr(18.99675)}))
	assert.Equal(t, "-40.0%", Percent(model.BranchResult{DifferencePercent: ptr(-40)}))
	assert.Equal(t, noPercent, Percent(model.BranchResult{PercentInfinite: true}))
}

func TestDetailedCSV(t *testing.T) {
	t.Parallel()
	data, err := DetailedCSV(sampleResults())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "Şube,Hammadde,Birim,Alınan Miktar (HAVI Şube),Hesaplanan Kullanım (POS Şube),Fark,Fark (%)\n"))
	assert.Contains(t, text, `"ANKARA ""MERKEZ"""`)
	assert.Contains(t, text, `"SÜT, TAM YAĞLI"`)

	rows := readCSV(t, data)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{`ANKARA "MERKEZ"`, "SÜT, TAM YAĞLI", "gr", "1.234,5", "1.000", "234,5", "19.0%"}, rows[1])
	assert.Equal(t, []string{"IZMIR ALSANCAK", "KRUVASAN SADE", "adet", "0", "8", "-8", "-"}, rows[2])
	assert.Equal(t, []string{"IZMIR ALSANCAK", "PEÇETE", "koli", "3", "0", "N/A", "N/A"}, rows[3])
}

func TestSummaryCSV(t *testing.T) {
	t.Parallel()
	summaries := []model.BranchSummary{
		{Branch: "ANKARA MERKEZ", Province: "ANKARA", TotalItemsAnalyzed: 4, DeficitCount: 1, SurplusCount: 2, NearMatchCount: 1,
			TotalDeficitGr: -400.456, TotalSurplusGr: 1220, TotalDeficitAdet: -7.6, TotalSurplusAdet: 12.2},
		{Branch: "X", IncomparableUnitCount: 2, TotalItemsAnalyzed: 2},
	}
	data, err := SummaryCSV(summaries)
	require.NoError(t, err)

	rows := readCSV(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, summaryHeader, rows[0])
	assert.Equal(t, []string{"ANKARA MERKEZ", "ANKARA", "4", "1", "2", "1", "-400,46", "1.220", "-8", "12", "0"}, rows[1])
	assert.Equal(t, "Bilinmiyor", rows[2][1])
	assert.Equal(t, "2", rows[2][10])
}

func TestEmptyCSVHasHeader(t *testing.T) {
	t.Parallel()
	data, err := DetailedCSV(nil)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 1)
}

func TestReport(t *testing.T) {
	t.Parallel()
	r, ok := ParseReport("summary")
	require.True(t, ok)
	assert.Equal(t, SummaryFileName, r.FileName())
	_, ok = ParseReport("chart")
	assert.False(t, ok)
	assert.Equal(t, "hammadde_analizi_detayli.csv", ReportDetailed.FileName())
}

func TestWorkbook(t *testing.T) {
	t.Parallel()
	var stages []int
	data, err := WorkbookBytes(WorkbookData{
		Results:   sampleResults(),
		Summaries: []model.BranchSummary{{Branch: "ANKARA MERKEZ", Province: "ANKARA", TotalItemsAnalyzed: 1, SurplusCount: 1, TotalSurplusGr: 234.5}},
		Totals:    []model.IngredientTotal{{Ingredient: "SÜT", TotalAmount: 1000, Unit: "gr"}},
	}, WorkbookOptions{Progress: func(e ProgressEvent) { stages = append(stages, e.Percent) }})
	require.NoError(t, err)
	assert.Equal(t, 100, stages[len(stages)-1])

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDetailed, SheetSummary, SheetTotals}, f.GetSheetList())

	rows, err := f.GetRows(SheetDetailed, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Fark (%)", rows[0][6])
	assert.Equal(t, "1234.5", rows[1][3])
	assert.Equal(t, "19", rows[1][6])
	assert.Equal(t, "-", rows[2][6])
	assert.Equal(t, "N/A", rows[3][5])

	summary, err := f.GetRows(SheetSummary, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "ANKARA", summary[1][1])
	assert.Equal(t, "234.5", summary[1][7])
}

func TestWorkbookWithoutTotals(t *testing.T) {
	t.Parallel()
	f, err := Workbook(WorkbookData{}, WorkbookOptions{})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetDetailed, SheetSummary}, f.GetSheetList())
}

func TestProgressReporter(t *testing.T) {
	t.Parallel()
	var got []ProgressEvent
	p := newProgressReporter(func(e ProgressEvent) { got = append(got, e) })

	p.report(-5, "a", "")
	p.report(40, "b", SheetDetailed)
	p.report(30, "c", "")
	p.report(40, "d", "")
	p.rows(1, 2, 40, 60, "e", SheetDetailed)
	p.report(150, "f", "")

	require.Len(t, got, 4)
	assert.Equal(t, []int{0, 40, 50, 100}, []int{got[0].Percent, got[1].Percent, got[2].Percent, got[3].Percent})
	assert.Equal(t, SheetDetailed, got[2].Sheet)

	assert.NotPanics(t, func() { newProgressReporter(nil).report(10, "x", "") })
}
