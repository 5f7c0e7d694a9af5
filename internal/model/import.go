package model

import "time"

// ImportKind 导入类型
type ImportKind string

const (
	ImportKindBills   ImportKind = "bills"
	ImportKindClients ImportKind = "clients"
)

// ImportLog 导入日志
type ImportLog struct {
	ID           int64      `db:"id" json:"id"`
	BatchID      string     `db:"batch_id" json:"batchId"`
	Kind         string     `db:"kind" json:"kind"`
	Filename     string     `db:"filename" json:"filename"`
	TotalRows    int        `db:"total_rows" json:"totalRows"`
	ImportedRows int        `db:"imported_rows" json:"importedRows"`
	ErrorRows    int        `db:"error_rows" json:"errorRows"`
	Status       string     `db:"status" json:"status"`
	ErrorMessage string     `db:"error_message" json:"errorMessage"`
	StartedAt    time.Time  `db:"started_at" json:"startedAt"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt"`
}
