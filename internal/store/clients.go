package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"billingest/internal/model"
)

// InsertClientsInTx 批量写入客户，已存在的名称跳过，返回新增数量
func (s *Store) InsertClientsInTx(tx *sqlx.Tx, names []string) (int, error) {
	stmt, err := tx.Preparex(`INSERT INTO clients (name) VALUES (?) ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare client insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, name := range names {
		res, err := stmt.Exec(name)
		if err != nil {
			return inserted, fmt.Errorf("InsertClientsInTx (Name: %s) failed: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// InsertOrganizationsInTx 批量写入机构，同一客户下同名机构跳过，返回新增数量
func (s *Store) InsertOrganizationsInTx(tx *sqlx.Tx, orgs []model.Organization) (int, error) {
	stmt, err := tx.PrepareNamed(`
		INSERT INTO organizations (name, address, fraud_weight, client_id)
		VALUES (:name, :address, :fraud_weight, :client_id)
		ON CONFLICT(name, client_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare organization insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, org := range orgs {
		res, err := stmt.Exec(org)
		if err != nil {
			return inserted, fmt.Errorf("InsertOrganizationsInTx (Name: %s) failed: %w", org.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// AddFraudWeightInTx 增加机构的 fraud_weight
func (s *Store) AddFraudWeightInTx(tx *sqlx.Tx, organizationID int64, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := tx.Exec(`UPDATE organizations SET fraud_weight = fraud_weight + ? WHERE id = ?`, delta, organizationID)
	if err != nil {
		return fmt.Errorf("AddFraudWeightInTx (ID: %d) failed: %w", organizationID, err)
	}
	return nil
}

// GetOrganization 按 ID 获取机构
func (s *Store) GetOrganization(id int64) (*model.Organization, error) {
	var org model.Organization
	err := s.db.Get(&org, `SELECT id, name, address, fraud_weight, client_id FROM organizations WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization %d: %w", id, err)
	}
	return &org, nil
}

// ListOrganizationsByClient 获取客户名下的机构
func (s *Store) ListOrganizationsByClient(clientName string) ([]model.Organization, error) {
	var orgs []model.Organization
	err := s.db.Select(&orgs, `
		SELECT o.id, o.name, o.address, o.fraud_weight, o.client_id
		FROM organizations o
		JOIN clients c ON c.id = o.client_id
		WHERE c.name = ?
		ORDER BY o.id
	`, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations of %s: %w", clientName, err)
	}
	return orgs, nil
}
