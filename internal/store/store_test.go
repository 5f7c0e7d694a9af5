package store

import (
	"path/filepath"
	"testing"
	"time"

	"billingest/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "billing.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedDirectory(t *testing.T, st *Store) {
	t.Helper()

	tx, err := st.BeginTx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if n, err := st.InsertClientsInTx(tx, []string{"Acme", "Beta", "Acme"}); err != nil || n != 2 {
		t.Fatalf("insert clients: n=%d err=%v", n, err)
	}
	dir, err := st.LoadDirectoryInTx(tx)
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	acme, _ := dir.Client("Acme")
	beta, _ := dir.Client("Beta")
	addr := "Адрес: Москва"
	orgs := []model.Organization{
		{Name: "Acme Clinic", Address: &addr, ClientID: acme.ID},
		{Name: "Shared", ClientID: acme.ID},
		{Name: "Shared", ClientID: beta.ID},
		{Name: "Acme Clinic", ClientID: acme.ID},
	}
	if n, err := st.InsertOrganizationsInTx(tx, orgs); err != nil || n != 3 {
		t.Fatalf("insert organizations: n=%d err=%v", n, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestDirectory_ResolveByExactNameWithinClient(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedDirectory(t, st)

	tx, err := st.BeginTx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	dir, err := st.LoadDirectoryInTx(tx)
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}

	client, org, ok := dir.Resolve("Acme", "Acme Clinic")
	if !ok || client.Name != "Acme" || org.Name != "Acme Clinic" || org.ClientID != client.ID {
		t.Fatalf("unexpected resolve: %v %+v %+v", ok, client, org)
	}
	if org.Address == nil || *org.Address != "Адрес: Москва" {
		t.Fatalf("unexpected address: %v", org.Address)
	}

	_, acmeShared, ok := dir.Resolve("Acme", "Shared")
	if !ok {
		t.Fatalf("Acme/Shared should resolve")
	}
	_, betaShared, ok := dir.Resolve("Beta", "Shared")
	if !ok || betaShared.ID == acmeShared.ID {
		t.Fatalf("same org name under another client must resolve to its own row")
	}

	for _, pair := range [][2]string{{"Beta", "Acme Clinic"}, {"acme", "Acme Clinic"}, {"Acme", "acme clinic"}, {"Nobody", "Shared"}} {
		if _, _, ok := dir.Resolve(pair[0], pair[1]); ok {
			t.Fatalf("%v should not resolve", pair)
		}
	}

	if _, padded, ok := dir.Resolve(" Acme ", "Acme Clinic\t"); !ok || padded.Name != "Acme Clinic" {
		t.Fatalf("surrounding whitespace should be ignored, got %+v %v", padded, ok)
	}
}

func TestInsertBills_DuplicatesAndFraudWeight(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedDirectory(t, st)

	tx, err := st.BeginTx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	dir, err := st.LoadDirectoryInTx(tx)
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	client, org, _ := dir.Resolve("Acme", "Acme Clinic")

	date := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	bills := []model.Bill{
		{Number: 1, Summ: 120.5, Date: date, Service: "лечение", FraudScore: 0.95, ServiceClass: 2, ServiceName: "лечение", ClientID: client.ID, OrganizationID: org.ID, ImportBatch: "b1"},
		{Number: 2, Summ: 10, Date: date, Service: "x", FraudScore: 0.1, ServiceClass: 1, ServiceName: "консультация", ClientID: client.ID, OrganizationID: org.ID, ImportBatch: "b1"},
		{Number: 1, Summ: 99, Date: date, Service: "dup", FraudScore: 0.2, ServiceClass: 1, ServiceName: "консультация", ClientID: client.ID, OrganizationID: org.ID, ImportBatch: "b1"},
	}
	inserted, err := st.InsertBillsInTx(tx, bills)
	if err != nil {
		t.Fatalf("insert bills: %v", err)
	}
	if !inserted[0] || !inserted[1] || inserted[2] {
		t.Fatalf("unexpected insert flags: %v", inserted)
	}
	if err := st.AddFraudWeightInTx(tx, org.ID, 1); err != nil {
		t.Fatalf("add fraud weight: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := st.GetOrganization(org.ID)
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if got.FraudWeight != 1 {
		t.Fatalf("unexpected fraud weight: %d", got.FraudWeight)
	}

	stored, err := st.ListBillsByBatch("b1")
	if err != nil {
		t.Fatalf("list bills: %v", err)
	}
	if len(stored) != 2 || stored[0].Summ != 120.5 || !stored[0].Date.Equal(date) {
		t.Fatalf("unexpected stored bills: %+v", stored)
	}

	counts, err := st.GetCounts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Clients != 2 || counts.Organizations != 3 || counts.Bills != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestImportLog_Lifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	id, err := st.CreateImportLog("batch-1", model.ImportKindBills, "bills.xlsx")
	if err != nil {
		t.Fatalf("create import log: %v", err)
	}
	if err := st.InsertSheetMeta(SheetMeta{ImportLogID: id, SheetName: "Sheet1", Layout: "variant1", Columns: []string{"№", "sum"}, TotalRows: 3}); err != nil {
		t.Fatalf("insert sheet meta: %v", err)
	}
	if err := st.UpdateImportLog(id, 3, 2, 1, "imported", ""); err != nil {
		t.Fatalf("update import log: %v", err)
	}

	log, err := st.GetImportLog("batch-1")
	if err != nil {
		t.Fatalf("get import log: %v", err)
	}
	if log.Kind != "bills" || log.TotalRows != 3 || log.ImportedRows != 2 || log.ErrorRows != 1 || log.Status != "imported" || log.CompletedAt == nil {
		t.Fatalf("unexpected import log: %+v", log)
	}

	latest, err := st.LatestImportLog()
	if err != nil || latest.BatchID != "batch-1" {
		t.Fatalf("unexpected latest: %+v %v", latest, err)
	}

	var columns string
	if err := st.QueryRow("SELECT columns_json FROM sheets_meta WHERE import_log_id = ?", id).Scan(&columns); err != nil {
		t.Fatalf("read sheets_meta: %v", err)
	}
	if columns != `["№","sum"]` {
		t.Fatalf("unexpected columns json: %s", columns)
	}
}
