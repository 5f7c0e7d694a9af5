package model

// Client 客户
type Client struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Organization 客户名下的机构
type Organization struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Address     *string `db:"address" json:"address"`
	FraudWeight int     `db:"fraud_weight" json:"fraudWeight"` // 高风险账单计数
	ClientID    int64   `db:"client_id" json:"clientId"`
}

// OrganizationRow organization 表单中的一行
type OrganizationRow struct {
	ClientName string
	Name       string
	Address    *string
}
