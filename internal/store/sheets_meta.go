package store

import (
	"encoding/json"
	"fmt"
)

// SheetMeta 导入时读取的工作表元信息
type SheetMeta struct {
	ImportLogID int64
	SheetName   string
	Layout      string
	Columns     []string
	TotalRows   int
}

// InsertSheetMeta 写入工作表元信息（用于追溯上传文件的表头）
func (s *Store) InsertSheetMeta(meta SheetMeta) error {
	_, err := s.db.Exec(`
		INSERT INTO sheets_meta (import_log_id, sheet_name, layout, columns_json, total_rows)
		VALUES (?, ?, ?, ?, ?)
	`, meta.ImportLogID, meta.SheetName, meta.Layout, BuildColumnsJSON(meta.Columns), meta.TotalRows)
	if err != nil {
		return fmt.Errorf("failed to insert sheets_meta: %w", err)
	}
	return nil
}

// BuildColumnsJSON 将列名序列化为 JSON
func BuildColumnsJSON(columns []string) string {
	if columns == nil {
		return "[]"
	}
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
