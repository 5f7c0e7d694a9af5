package parser

import (
	"testing"

	"billingest/internal/model"
)

func TestLayoutRecognizer_Recognize(t *testing.T) {
	t.Parallel()

	r := NewLayoutRecognizer()
	cases := []struct {
		name   string
		header []string
		want   LayoutVariant
	}{
		{"variant1", []string{"client_name", "client_org", "№", "sum", "date", "service"}, LayoutVariant1},
		{"variant2", []string{"client", "organization", "bill_number", "total_sum", "created_date", "service_name"}, LayoutVariant2},
		{"variant3", []string{"client_code", "client_org_name", "number", "total", "created", "service"}, LayoutVariant3},
		{"empty header falls back", nil, LayoutVariant3},
		{"unknown header falls back", []string{"a", "b"}, LayoutVariant3},
		{"half of variant1 pair", []string{"client_name", "organization"}, LayoutVariant3},
		{"variant1 wins over variant2", []string{"client", "organization", "client_name", "client_org"}, LayoutVariant1},
		{"padded header", []string{" client ", "organization\n"}, LayoutVariant2},
	}

	for _, tc := range cases {
		if got := r.Recognize(tc.header); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestNormalize_AliasTables(t *testing.T) {
	t.Parallel()

	row := RawRow{
		"client":       "Acme",
		"organization": "Acme Clinic",
		"bill_number":  int64(7),
		"total_sum":    99.5,
		"service_name": "лечение",
	}
	rec := Normalize(row, LayoutVariant2)
	if rec.ClientName != "Acme" || rec.ClientOrg != "Acme Clinic" || rec.Number != int64(7) || rec.Summ != 99.5 || rec.Service != "лечение" {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if rec.Date != nil {
		t.Fatalf("missing column must map to nil, got %#v", rec.Date)
	}

	// 其它布局的列名不会被读取
	rec = Normalize(row, LayoutVariant1)
	for _, f := range model.CanonicalFields {
		if rec.Get(f) != nil {
			t.Fatalf("field %s should be nil under variant1, got %#v", f, rec.Get(f))
		}
	}
}

func TestAlias_Table(t *testing.T) {
	t.Parallel()

	want := map[LayoutVariant][]string{
		LayoutVariant1: {"client_name", "client_org", "№", "sum", "date", "service"},
		LayoutVariant2: {"client", "organization", "bill_number", "total_sum", "created_date", "service_name"},
		LayoutVariant3: {"client_code", "client_org_name", "number", "total", "created", "service"},
	}
	for variant, aliases := range want {
		for i, f := range model.CanonicalFields {
			if got := Alias(variant, f); got != aliases[i] {
				t.Fatalf("%s %s: want=%s got=%s", variant, f, aliases[i], got)
			}
		}
	}
	if got := Alias(LayoutVariant(42), model.FieldSumm); got != "summ" {
		t.Fatalf("unknown variant should fall back to canonical name, got %s", got)
	}
}
