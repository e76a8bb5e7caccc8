package importer

import (
	"time"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/logging"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

func testOptions() Options {
	return Options{
		Logger: logging.Nop(),
		Now:    func() time.Time { return time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC) },
	}
}

func makeTable(fileName string, columns []string, rows ...[]any) model.Table {
	t := model.Table{SourceName: fileName, Columns: columns}
	for _, row := range rows {
		rec := model.Record{model.FileNameColumn: fileName}
		for i, col := range columns {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t
}
