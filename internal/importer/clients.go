package importer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"billingest/internal/model"
	"billingest/internal/parser"
)

// 客户导入的工作表与列名
const (
	SheetClient       = "client"
	SheetOrganization = "organization"

	columnName       = "name"
	columnClientName = "client_name"
	columnAddress    = "address"

	addressPrefix = "Адрес: "
)

func (c *Coordinator) importClients(ctx context.Context, opts ImportOptions, progress progressFunc) (*ImportReport, error) {
	report := c.newReport(model.ImportKindClients, opts)
	return c.run(report, progress, func(logID int64) error {
		return c.runClients(ctx, opts, report, progress)
	})
}

// runClients 读取 client 与 organization 两个工作表并写入
func (c *Coordinator) runClients(ctx context.Context, opts ImportOptions, report *ImportReport, progress progressFunc) error {
	file, err := openWorkbook(opts)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := parser.NewSheetReader(file)
	clientSheet, err := readNamedSheet(reader, SheetClient)
	if err != nil {
		return err
	}
	orgSheet, err := readNamedSheet(reader, SheetOrganization)
	if err != nil {
		return err
	}
	report.TotalRows = len(clientSheet.Rows) + len(orgSheet.Rows)

	names, clientErrors := collectClientNames(clientSheet)
	orgs, orgErrors := collectOrganizations(orgSheet)
	report.Errors = append(report.Errors, clientErrors...)
	report.Errors = append(report.Errors, orgErrors...)
	report.InvalidRows = len(report.Errors)

	progress.send(EventInfo, fmt.Sprintf("读取客户 %d 行, 机构 %d 行", len(clientSheet.Rows), len(orgSheet.Rows)), map[string]int{
		"clients":       len(names),
		"organizations": len(orgs),
		"invalid_rows":  report.InvalidRows,
	})

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.persistDirectory(report, names, orgs)
}

// persistDirectory 先写入客户，再按客户名挂接机构
func (c *Coordinator) persistDirectory(report *ImportReport, names []string, rows []model.OrganizationRow) (err error) {
	tx, err := c.store.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insertedClients, err := c.store.InsertClientsInTx(tx, names)
	if err != nil {
		return err
	}

	dir, err := c.store.LoadDirectoryInTx(tx)
	if err != nil {
		return err
	}

	orgs := make([]model.Organization, 0, len(rows))
	for _, row := range rows {
		client, ok := dir.Client(row.ClientName)
		if !ok {
			report.UnresolvedRows++
			c.log.Debug("skip organization with unknown client",
				zap.String("batch_id", report.BatchID),
				zap.String("client", row.ClientName),
				zap.String("organization", row.Name),
			)
			continue
		}
		orgs = append(orgs, model.Organization{
			Name:     row.Name,
			Address:  row.Address,
			ClientID: client.ID,
		})
	}

	insertedOrgs, err := c.store.InsertOrganizationsInTx(tx, orgs)
	if err != nil {
		return err
	}

	report.ImportedRows = insertedClients + insertedOrgs
	report.DuplicateRows = len(names) - insertedClients + len(orgs) - insertedOrgs

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clients: %w", err)
	}
	return nil
}

func readNamedSheet(reader *parser.SheetReader, name string) (*parser.Sheet, error) {
	found := false
	for _, sheetName := range reader.SheetNames() {
		if sheetName == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, name)
	}

	sheet, err := reader.ReadSheet(name)
	if err != nil {
		return nil, err
	}
	if len(sheet.Header) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, name)
	}
	return sheet, nil
}

// collectClientNames 读取客户名称，名称去除首尾空白
func collectClientNames(sheet *parser.Sheet) ([]string, []model.RowViolations) {
	names := make([]string, 0, len(sheet.Rows))
	var report []model.RowViolations
	for i, row := range sheet.Rows {
		name, ok := cellText(row.Get(columnName))
		if !ok {
			report = append(report, rowViolation(sheet.Name, i+1, columnName))
			continue
		}
		names = append(names, name)
	}
	return names, report
}

// collectOrganizations 读取机构，客户名与机构名必填
func collectOrganizations(sheet *parser.Sheet) ([]model.OrganizationRow, []model.RowViolations) {
	rows := make([]model.OrganizationRow, 0, len(sheet.Rows))
	var report []model.RowViolations
	for i, row := range sheet.Rows {
		var violations []model.Violation
		clientName, ok := cellText(row.Get(columnClientName))
		if !ok {
			violations = append(violations, emptyViolation(columnClientName))
		}
		name, ok := cellText(row.Get(columnName))
		if !ok {
			violations = append(violations, emptyViolation(columnName))
		}
		if len(violations) > 0 {
			report = append(report, model.RowViolations{Sheet: sheet.Name, Row: i + 1, Violations: violations})
			continue
		}
		rows = append(rows, model.OrganizationRow{
			ClientName: clientName,
			Name:       name,
			Address:    PrepareAddress(row.Get(columnAddress)),
		})
	}
	return rows, report
}

// PrepareAddress 整理机构地址：空值保持为空，去除首尾空白与连字符后加上前缀
func PrepareAddress(value interface{}) *string {
	if value == nil {
		return nil
	}
	address := strings.Trim(strings.TrimSpace(fmt.Sprint(value)), "-")
	if address != "" {
		address = addressPrefix + address
	}
	return &address
}

// cellText 文本单元格去除首尾空白，空文本或非文本视为缺失
func cellText(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func rowViolation(sheet string, row int, column string) model.RowViolations {
	return model.RowViolations{
		Sheet:      sheet,
		Row:        row,
		Violations: []model.Violation{emptyViolation(column)},
	}
}

func emptyViolation(column string) model.Violation {
	return model.Violation{Field: column, Message: fmt.Sprintf("%s must be non-empty", column)}
}
