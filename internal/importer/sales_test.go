package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

func TestSalesProcessor(t *testing.T) {
	table := makeTable("AktifPOS 01.03.2025 - 31.03.2025.xlsx", []string{"Şube", "Ürün", "Miktar"},
		[]any{"CHL Kadıköy", "PAKET Cafe Latte", 3.0},
		[]any{"CHL Kadıköy", "Cafe Latte", "2,5"},
		[]any{"", "LATTE", 1.0},
		[]any{"CHL Bursa", "", 1.0},
		[]any{"CHL Bursa", "Kenia", "abc"},
	)

	res, err := NewSalesProcessor(testOptions()).Process(table)
	require.NoError(t, err)

	entries := []model.SalesEntry(res.Dataset.(model.SalesSet))
	require.Len(t, entries, 2)
	assert.Equal(t, model.SalesEntry{
		Date: "2025-03-01", EndDate: "2025-03-31", Branch: "Kadıköy", Product: "LATTE", Amount: 5.5,
	}, entries[0])
	assert.Equal(t, "KENYA", entries[1].Product)
	assert.Equal(t, 0.0, entries[1].Amount)
	assert.Equal(t, 2, res.Stats.RowsSkipped)
	require.NotNil(t, res.DateRange)
	assert.Equal(t, "2025-03-31", res.DateRange.EndISO())
}

func TestSalesProcessor_DateFromTitleRow(t *testing.T) {
	table := makeTable("rapor.xlsx", []string{"Satış Raporu 01.02.2025 - 28.02.2025", "B", "C"},
		[]any{"Şube", "Ürün", "Miktar"},
		[]any{"CHL Bursa", "Latte", 2.0},
	)

	res, err := NewSalesProcessor(testOptions()).Process(table)
	require.NoError(t, err)
	require.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, "2025-02-01", res.DateRange.StartISO())
}

func TestSalesProcessor_DefaultsToCurrentMonth(t *testing.T) {
	table := makeTable("satis.xlsx", []string{"Şube", "Ürün", "Miktar"},
		[]any{"CHL Bursa", "Latte", 2.0},
	)

	res, err := NewSalesProcessor(testOptions()).Process(table)
	require.NoError(t, err)
	entries := []model.SalesEntry(res.Dataset.(model.SalesSet))
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-04-01", entries[0].Date)
	assert.Equal(t, "2025-04-30", entries[0].EndDate)
}

func TestSalesProcessor_MissingColumns(t *testing.T) {
	table := makeTable("satis.xlsx", []string{"X", "Y"},
		[]any{1.0, 2.0},
		[]any{3.0, 4.0},
	)

	res, err := NewSalesProcessor(testOptions()).Process(table)
	require.ErrorIs(t, err, ErrColumnsNotFound)
	assert.Equal(t, 0, res.Dataset.Len())
}
