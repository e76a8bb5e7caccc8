package store

import (
	"fmt"
	"time"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

// RecordImport 写入一条导入记录
func (s *SQLiteStore) RecordImport(rec model.ImportRecord) error {
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = s.now()
	}
	_, err := s.db.Exec(`
		INSERT INTO import_logs (
			project_id, kind, filename, sheet_name, file_path, file_size, file_hash,
			rows_read, rows_emitted, status, message, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ProjectID, string(rec.Kind), rec.FileName, rec.SheetName, rec.FilePath, rec.FileSize, rec.FileHash,
		rec.RowsRead, rec.RowsEmitted, rec.Status, rec.Message, rec.ImportedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// ImportHistory 项目的导入记录，最新的在前；limit <= 0 表示不限
func (s *SQLiteStore) ImportHistory(id string, limit int) ([]model.ImportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT project_id, kind, filename, sheet_name, file_path, file_size, file_hash,
			rows_read, rows_emitted, status, message, imported_at
		FROM import_logs
		WHERE project_id = ?
		ORDER BY imported_at DESC, id DESC
		LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	history := []model.ImportRecord{}
	for rows.Next() {
		var (
			rec        model.ImportRecord
			kind       string
			importedAt string
		)
		if err := rows.Scan(&rec.ProjectID, &kind, &rec.FileName, &rec.SheetName, &rec.FilePath, &rec.FileSize, &rec.FileHash,
			&rec.RowsRead, &rec.RowsEmitted, &rec.Status, &rec.Message, &importedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		rec.Kind = model.SourceKind(kind)
		if rec.ImportedAt, err = time.Parse(timeLayout, importedAt); err != nil {
			return nil, fmt.Errorf("failed to parse imported_at: %w", err)
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}
