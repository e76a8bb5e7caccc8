package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteHeader_DuplicateLabels(t *testing.T) {
	t.Parallel()

	table := Table{
		SourceName: "havi.xlsx",
		Columns:    []string{"A", "B", "C", "D"},
		Records: []Record{
			{"A": "Rapor", "B": "", "C": "", "D": ""},
			{"A": "Miktar", "B": "Miktar", "C": "", "D": "Miktar_1"},
			{"A": 4.0, "B": 2.0, "C": "x", "D": 7.0, FileNameColumn: "havi.xlsx"},
		},
	}

	promoted := table.PromoteHeader(1)
	assert.Equal(t, []string{"Miktar", "Miktar_1", "C", "Miktar_1_1"}, promoted.Columns)
	require.Len(t, promoted.Records, 1)

	rec := promoted.Records[0]
	assert.Equal(t, 4.0, rec["Miktar"])
	assert.Equal(t, 2.0, rec["Miktar_1"])
	assert.Equal(t, "x", rec["C"])
	assert.Equal(t, 7.0, rec["Miktar_1_1"])
	assert.Equal(t, "havi.xlsx", rec[FileNameColumn])
}

func TestPromoteHeader_OutOfRange(t *testing.T) {
	t.Parallel()

	table := Table{Columns: []string{"A"}, Records: []Record{{"A": "x"}}}
	assert.Equal(t, table, table.PromoteHeader(3))
	assert.Equal(t, table, table.PromoteHeader(-1))
}
