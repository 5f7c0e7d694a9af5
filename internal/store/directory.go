package store

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"billingest/internal/model"
)

// Directory 客户与机构的名称索引，一次导入内只加载一次
type Directory struct {
	clients map[string]model.Client
	orgs    map[int64]map[string]model.Organization // client_id -> name -> 机构
}

// LoadDirectoryInTx 在事务内加载客户与机构
func (s *Store) LoadDirectoryInTx(tx *sqlx.Tx) (*Directory, error) {
	var clients []model.Client
	if err := tx.Select(&clients, `SELECT id, name FROM clients`); err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	var orgs []model.Organization
	if err := tx.Select(&orgs, `SELECT id, name, address, fraud_weight, client_id FROM organizations`); err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}

	d := &Directory{
		clients: make(map[string]model.Client, len(clients)),
		orgs:    make(map[int64]map[string]model.Organization),
	}
	for _, c := range clients {
		d.clients[c.Name] = c
	}
	for _, o := range orgs {
		byName, ok := d.orgs[o.ClientID]
		if !ok {
			byName = make(map[string]model.Organization)
			d.orgs[o.ClientID] = byName
		}
		byName[o.Name] = o
	}
	return d, nil
}

// Client 按名称精确查找客户
func (d *Directory) Client(name string) (model.Client, bool) {
	c, ok := d.clients[name]
	return c, ok
}

// Resolve 按名称精确查找客户及其名下的机构
// 名称去除首尾空白后比较，与客户导入时的写入规则一致
func (d *Directory) Resolve(clientName, orgName string) (model.Client, model.Organization, bool) {
	client, ok := d.clients[strings.TrimSpace(clientName)]
	if !ok {
		return model.Client{}, model.Organization{}, false
	}
	org, ok := d.orgs[client.ID][strings.TrimSpace(orgName)]
	if !ok {
		return model.Client{}, model.Organization{}, false
	}
	return client, org, true
}
