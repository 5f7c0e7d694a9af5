package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"billingest/internal/model"
	"billingest/internal/parser"
	"billingest/internal/store"
	"billingest/pkg/logger"
	"billingest/pkg/metrics"
)

// Coordinator 导入协调器
type Coordinator struct {
	store    *store.Store
	pipeline *Pipeline
	log      *zap.Logger
	metrics  *metrics.Manager
}

// Option 协调器配置
type Option func(*Coordinator)

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, pipeline *Pipeline, opts ...Option) *Coordinator {
	if pipeline == nil {
		pipeline = NewPipeline(nil)
	}
	c := &Coordinator{
		store:    st,
		pipeline: pipeline,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImportOptions 导入选项
type ImportOptions struct {
	Kind     model.ImportKind
	FilePath string
	Source   io.Reader // 非空时优先于 FilePath，用于上传的文件
	Filename string    // 为空时取 FilePath 的文件名
}

func (o ImportOptions) filename() string {
	if o.Filename != "" {
		return o.Filename
	}
	return filepath.Base(o.FilePath)
}

type progressFunc func(ProgressEvent)

func (f progressFunc) send(typ, message string, data interface{}) {
	if f == nil {
		return
	}
	f(ProgressEvent{
		Type:      typ,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		progress := progressFunc(func(evt ProgressEvent) {
			c.sendProgress(ctx, progressChan, evt)
		})

		var (
			report *ImportReport
			err    error
		)
		switch opts.Kind {
		case model.ImportKindClients:
			report, err = c.importClients(ctx, opts, progress)
		default:
			report, err = c.importBills(ctx, opts, progress)
		}
		if err != nil {
			progress.send(EventError, fmt.Sprintf("导入失败: %v", err), nil)
			return
		}
		progress.send(EventDone, "导入完成", report)
	}()

	return progressChan
}

// ImportBills 同步导入账单表
func (c *Coordinator) ImportBills(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	return c.importBills(ctx, opts, nil)
}

// ImportClients 同步导入客户与机构
func (c *Coordinator) ImportClients(ctx context.Context, opts ImportOptions) (*ImportReport, error) {
	return c.importClients(ctx, opts, nil)
}

// sendProgress 发送进度事件，接收方已离开时丢弃
func (c *Coordinator) sendProgress(ctx context.Context, ch chan<- ProgressEvent, evt ProgressEvent) {
	select {
	case ch <- evt:
	case <-ctx.Done():
	}
}

func (c *Coordinator) importBills(ctx context.Context, opts ImportOptions, progress progressFunc) (*ImportReport, error) {
	report := c.newReport(model.ImportKindBills, opts)
	return c.run(report, progress, func(logID int64) error {
		return c.runBills(ctx, opts, report, logID, progress)
	})
}

// run 记录导入日志并执行具体导入
func (c *Coordinator) run(report *ImportReport, progress progressFunc, fn func(logID int64) error) (*ImportReport, error) {
	startTime := time.Now()

	progress.send(EventStart, "开始导入 Excel 文件", map[string]string{
		"batch_id": report.BatchID,
		"kind":     string(report.Kind),
		"filename": report.Filename,
	})

	logID, err := c.store.CreateImportLog(report.BatchID, report.Kind, report.Filename)
	if err != nil {
		c.metrics.ObserveImport(string(report.Kind), StatusError, time.Since(startTime))
		return nil, err
	}

	err = fn(logID)
	report.Duration = time.Since(startTime)
	c.finish(logID, report, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Coordinator) newReport(kind model.ImportKind, opts ImportOptions) *ImportReport {
	return &ImportReport{
		BatchID:  uuid.NewString(),
		Kind:     kind,
		Filename: opts.filename(),
		Errors:   []model.RowViolations{},
	}
}

// runBills 读取第一个工作表，经流水线处理后写入
func (c *Coordinator) runBills(ctx context.Context, opts ImportOptions, report *ImportReport, logID int64, progress progressFunc) error {
	file, err := openWorkbook(opts)
	if err != nil {
		return err
	}
	defer file.Close()

	sheet, err := parser.NewSheetReader(file).FirstSheet()
	if err != nil {
		return err
	}
	if len(sheet.Header) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySheet, sheet.Name)
	}

	layout := parser.DetectLayout(sheet.Header)
	report.Layout = layout.String()
	report.TotalRows = len(sheet.Rows)

	progress.send(EventInfo, fmt.Sprintf("Sheet \"%s\" 识别为: %s", sheet.Name, layout), map[string]interface{}{
		"sheet_name": sheet.Name,
		"layout":     layout.String(),
		"total_rows": len(sheet.Rows),
	})

	if err := c.store.InsertSheetMeta(store.SheetMeta{
		ImportLogID: logID,
		SheetName:   sheet.Name,
		Layout:      layout.String(),
		Columns:     sheet.Header,
		TotalRows:   len(sheet.Rows),
	}); err != nil {
		return err
	}

	bills, violations := c.pipeline.Process(sheet)
	report.Errors = append(report.Errors, violations...)
	report.InvalidRows = len(violations)

	progress.send(EventInfo, fmt.Sprintf("校验完成: 有效 %d 行, 无效 %d 行", len(bills), len(violations)), map[string]int{
		"valid_rows":   len(bills),
		"invalid_rows": len(violations),
	})

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.persistBills(report, bills); err != nil {
		return err
	}

	progress.send(EventInfo, fmt.Sprintf("写入 %d 行, 跳过重复 %d 行, 未匹配 %d 行", report.ImportedRows, report.DuplicateRows, report.UnresolvedRows), nil)
	return nil
}

// persistBills 在一个事务内解析客户与机构、写入账单并累加 fraud_weight
func (c *Coordinator) persistBills(report *ImportReport, bills []model.EnrichedBill) (err error) {
	tx, err := c.store.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	dir, err := c.store.LoadDirectoryInTx(tx)
	if err != nil {
		return err
	}

	rows := make([]model.Bill, 0, len(bills))
	flagged := make([]bool, 0, len(bills))
	for _, bill := range bills {
		client, org, ok := dir.Resolve(bill.ClientName, bill.ClientOrg)
		if !ok {
			report.UnresolvedRows++
			c.log.Debug("skip bill with unknown client or organization",
				zap.String("batch_id", report.BatchID),
				zap.Int("row", bill.Row),
				zap.String("client", bill.ClientName),
				zap.String("organization", bill.ClientOrg),
			)
			continue
		}
		rows = append(rows, model.Bill{
			Number:         bill.Number,
			Summ:           bill.Summ,
			Date:           bill.Date,
			Service:        bill.Service,
			FraudScore:     bill.FraudScore,
			ServiceClass:   bill.ServiceClass,
			ServiceName:    bill.ServiceName,
			ClientID:       client.ID,
			OrganizationID: org.ID,
			ImportBatch:    report.BatchID,
		})
		flagged = append(flagged, bill.Fraud)
	}

	inserted, err := c.store.InsertBillsInTx(tx, rows)
	if err != nil {
		return err
	}

	weights := make(map[int64]int)
	for i, ok := range inserted {
		if !ok {
			report.DuplicateRows++
			continue
		}
		report.ImportedRows++
		if flagged[i] {
			report.FraudFlagged++
			weights[rows[i].OrganizationID]++
		}
	}
	for orgID, delta := range weights {
		if err = c.store.AddFraudWeightInTx(tx, orgID, delta); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bills: %w", err)
	}
	return nil
}

// finish 更新导入日志并记录指标
func (c *Coordinator) finish(logID int64, report *ImportReport, runErr error) {
	status, message := StatusImported, ""
	if runErr != nil {
		status, message = StatusError, runErr.Error()
	}

	if err := c.store.UpdateImportLog(logID, report.TotalRows, report.ImportedRows, report.InvalidRows, status, message); err != nil {
		c.log.Warn("failed to update import log", zap.String("batch_id", report.BatchID), zap.Error(err))
	}

	kind := string(report.Kind)
	c.metrics.ObserveImport(kind, status, report.Duration)

	if runErr != nil {
		c.log.Error("import failed",
			zap.String("batch_id", report.BatchID),
			zap.String("kind", kind),
			zap.String("filename", report.Filename),
			zap.Error(runErr),
		)
		return
	}

	c.metrics.ObserveRows(kind, metrics.OutcomeImported, report.ImportedRows)
	c.metrics.ObserveRows(kind, metrics.OutcomeInvalid, report.InvalidRows)
	c.metrics.ObserveRows(kind, metrics.OutcomeUnresolved, report.UnresolvedRows)
	c.metrics.ObserveRows(kind, metrics.OutcomeDuplicate, report.DuplicateRows)
	c.metrics.ObserveFraudFlags(report.FraudFlagged)

	c.log.Info("import finished",
		zap.String("batch_id", report.BatchID),
		zap.String("kind", kind),
		zap.String("filename", report.Filename),
		zap.Int("total_rows", report.TotalRows),
		zap.Int("imported_rows", report.ImportedRows),
		zap.Int("invalid_rows", report.InvalidRows),
		zap.Int("unresolved_rows", report.UnresolvedRows),
		zap.Int("duplicate_rows", report.DuplicateRows),
		zap.Int("fraud_flagged", report.FraudFlagged),
		zap.Duration("duration", report.Duration),
	)
}

// openWorkbook 打开上传内容或本地文件
func openWorkbook(opts ImportOptions) (*excelize.File, error) {
	if opts.Source != nil {
		file, err := excelize.OpenReader(opts.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorkbook, opts.filename(), err)
		}
		return file, nil
	}
	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorkbook, opts.filename(), err)
	}
	return file, nil
}
