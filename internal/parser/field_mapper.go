package parser

import "billingest/internal/model"

// layoutAliases 各布局下规范字段对应的源列名
// 新增布局只需在这里加一组映射，并在 layoutSignatures 中登记识别特征
var layoutAliases = map[LayoutVariant]map[model.Field]string{
	LayoutVariant1: {
		model.FieldClientName: "client_name",
		model.FieldClientOrg:  "client_org",
		model.FieldNumber:     "№",
		model.FieldSumm:       "sum",
		model.FieldDate:       "date",
		model.FieldService:    "service",
	},
	LayoutVariant2: {
		model.FieldClientName: "client",
		model.FieldClientOrg:  "organization",
		model.FieldNumber:     "bill_number",
		model.FieldSumm:       "total_sum",
		model.FieldDate:       "created_date",
		model.FieldService:    "service_name",
	},
	LayoutVariant3: {
		model.FieldClientName: "client_code",
		model.FieldClientOrg:  "client_org_name",
		model.FieldNumber:     "number",
		model.FieldSumm:       "total",
		model.FieldDate:       "created",
		model.FieldService:    "service",
	},
}

// Alias 返回布局下规范字段的源列名，未登记时返回规范字段名本身
func Alias(variant LayoutVariant, field model.Field) string {
	if aliases, ok := layoutAliases[variant]; ok {
		if col, ok := aliases[field]; ok {
			return col
		}
	}
	return string(field)
}

// FieldMapper 按布局把原始行映射为规范记录
type FieldMapper struct {
	variant LayoutVariant
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(variant LayoutVariant) *FieldMapper {
	return &FieldMapper{variant: variant}
}

// Variant 映射器使用的布局
func (m *FieldMapper) Variant() LayoutVariant {
	return m.variant
}

// Map 映射单行，缺失的列得到 nil
func (m *FieldMapper) Map(row RawRow) model.CanonicalRecord {
	var record model.CanonicalRecord
	for _, field := range model.CanonicalFields {
		record.Set(field, row.Get(Alias(m.variant, field)))
	}
	return record
}

// Normalize 按布局映射单行
func Normalize(row RawRow, variant LayoutVariant) model.CanonicalRecord {
	return NewFieldMapper(variant).Map(row)
}
