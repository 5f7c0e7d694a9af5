package store

import (
	"fmt"

	"billingest/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(batchID string, kind model.ImportKind, filename string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (batch_id, kind, filename, status)
		VALUES (?, ?, ?, 'processing')
	`, batchID, string(kind), filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalRows, importedRows, errorRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_rows = ?,
			imported_rows = ?,
			error_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, importedRows, errorRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// GetImportLog 按批次号获取导入日志
func (s *Store) GetImportLog(batchID string) (*model.ImportLog, error) {
	var log model.ImportLog
	err := s.db.Get(&log, `
		SELECT id, batch_id, kind, filename, total_rows, imported_rows, error_rows,
			status, error_message, started_at, completed_at
		FROM import_logs WHERE batch_id = ?
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import log %s: %w", batchID, err)
	}
	return &log, nil
}

// LatestImportLog 最近一次导入
func (s *Store) LatestImportLog() (*model.ImportLog, error) {
	var log model.ImportLog
	err := s.db.Get(&log, `
		SELECT id, batch_id, kind, filename, total_rows, imported_rows, error_rows,
			status, error_message, started_at, completed_at
		FROM import_logs ORDER BY id DESC LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
