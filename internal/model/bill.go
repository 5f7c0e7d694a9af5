package model

import "time"

// Violation 单个字段的校验错误，Field 为源表中的列名
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowViolations 一行数据的全部校验错误
type RowViolations struct {
	Sheet      string      `json:"sheet,omitempty"` // 客户导入涉及两个工作表时标明来源
	Row        int         `json:"row_index"`       // 数据行序号，从 1 开始
	Violations []Violation `json:"violations"`
}

// BillRecord 校验通过的账单
// Number 与 Summ 使用固定的 Go 类型：整数值的 float64 账单号存为 int64，整数金额存为 float64，
// 数值本身不变；非整数或超出 2^53 的账单号在校验阶段即被拒绝
type BillRecord struct {
	ClientName string    `json:"client_name"`
	ClientOrg  string    `json:"client_org"`
	Number     int64     `json:"number"`
	Summ       float64   `json:"summ"`
	Date       time.Time `json:"date"`
	Service    string    `json:"service"`
}

// EnrichedBill 附加风控评分与服务分类后的账单
type EnrichedBill struct {
	BillRecord
	Row          int     `json:"row_index"` // 源数据行序号
	FraudScore   float64 `json:"fraud_score"`
	Fraud        bool    `json:"fraud"` // fraud_score 达到阈值
	ServiceClass int     `json:"service_class"`
	ServiceName  string  `json:"service_name"`
}

// Bill 入库的账单
type Bill struct {
	ID             int64     `db:"id" json:"id"`
	Number         int64     `db:"number" json:"number"`
	Summ           float64   `db:"summ" json:"summ"`
	Date           time.Time `db:"date" json:"date"`
	Service        string    `db:"service" json:"service"`
	FraudScore     float64   `db:"fraud_score" json:"fraudScore"`
	ServiceClass   int       `db:"service_class" json:"serviceClass"`
	ServiceName    string    `db:"service_name" json:"serviceName"`
	ClientID       int64     `db:"client_id" json:"clientId"`
	OrganizationID int64     `db:"organization_id" json:"organizationId"`
	ImportBatch    string    `db:"import_batch" json:"importBatch"`
}
