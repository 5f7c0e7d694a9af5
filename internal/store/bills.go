package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"billingest/internal/model"
)

// InsertBillsInTx 批量写入账单
// 同一机构下重复的账单号跳过，返回每条账单是否写入
func (s *Store) InsertBillsInTx(tx *sqlx.Tx, bills []model.Bill) ([]bool, error) {
	stmt, err := tx.PrepareNamed(`
		INSERT INTO bills (
			number, summ, date, service,
			fraud_score, service_class, service_name,
			client_id, organization_id, import_batch
		) VALUES (
			:number, :summ, :date, :service,
			:fraud_score, :service_class, :service_name,
			:client_id, :organization_id, :import_batch
		)
		ON CONFLICT(number, organization_id) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare bill insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]bool, len(bills))
	for i, bill := range bills {
		res, err := stmt.Exec(bill)
		if err != nil {
			return nil, fmt.Errorf("InsertBillsInTx (Number: %d) failed: %w", bill.Number, err)
		}
		n, _ := res.RowsAffected()
		inserted[i] = n > 0
	}
	return inserted, nil
}

// Counts 各表行数
type Counts struct {
	Clients       int `db:"clients" json:"clients"`
	Organizations int `db:"organizations" json:"organizations"`
	Bills         int `db:"bills" json:"bills"`
}

// GetCounts 统计各表行数
func (s *Store) GetCounts() (Counts, error) {
	var c Counts
	err := s.db.Get(&c, `
		SELECT
			(SELECT COUNT(1) FROM clients) AS clients,
			(SELECT COUNT(1) FROM organizations) AS organizations,
			(SELECT COUNT(1) FROM bills) AS bills
	`)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

// ListBillsByBatch 获取某次导入写入的账单
func (s *Store) ListBillsByBatch(batchID string) ([]model.Bill, error) {
	var bills []model.Bill
	err := s.db.Select(&bills, `
		SELECT id, number, summ, date, service, fraud_score, service_class, service_name,
			client_id, organization_id, import_batch
		FROM bills
		WHERE import_batch = ?
		ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills of batch %s: %w", batchID, err)
	}
	return bills, nil
}
