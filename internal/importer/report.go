package importer

import (
	"errors"
	"time"

	"billingest/internal/model"
	"billingest/internal/parser"
)

var (
	// ErrInvalidWorkbook 上传内容不是可读取的 xlsx
	ErrInvalidWorkbook = errors.New("invalid xlsx workbook")
	// ErrNoSheets 工作簿中没有工作表
	ErrNoSheets = parser.ErrNoSheets
	// ErrEmptySheet 工作表没有表头
	ErrEmptySheet = errors.New("sheet has no header row")
	// ErrMissingSheet 缺少必需的工作表
	ErrMissingSheet = errors.New("required sheet is missing")
)

// IsWorkbookError 是否为工作簿结构问题（而非存储或内部错误）
func IsWorkbookError(err error) bool {
	return errors.Is(err, ErrInvalidWorkbook) ||
		errors.Is(err, ErrNoSheets) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, ErrMissingSheet)
}

// 导入状态
const (
	StatusProcessing = "processing"
	StatusImported   = "imported"
	StatusError      = "error"
)

// ImportReport 一次导入的汇总
type ImportReport struct {
	BatchID        string                `json:"batch_id"`
	Kind           model.ImportKind      `json:"kind"`
	Filename       string                `json:"filename"`
	Layout         string                `json:"layout,omitempty"`
	TotalRows      int                   `json:"total_rows"`
	ImportedRows   int                   `json:"imported_rows"`
	InvalidRows    int                   `json:"invalid_rows"`
	UnresolvedRows int                   `json:"unresolved_rows"`
	DuplicateRows  int                   `json:"duplicate_rows"`
	FraudFlagged   int                   `json:"fraud_flagged"`
	Errors         []model.RowViolations `json:"errors"`
	Duration       time.Duration         `json:"duration"`
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/info/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// 事件类型
const (
	EventStart = "start"
	EventInfo  = "info"
	EventDone  = "done"
	EventError = "error"
)
