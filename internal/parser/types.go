package parser

import (
	"fmt"

	"billingest/internal/model"
)

// LayoutVariant 账单表的列名布局
type LayoutVariant int

const (
	LayoutVariant1 LayoutVariant = iota + 1 // client_name / client_org / № / sum ...
	LayoutVariant2                          // client / organization / bill_number / total_sum ...
	LayoutVariant3                          // client_code / client_org_name / number / total ...
)

// String 返回布局名称
func (v LayoutVariant) String() string {
	switch v {
	case LayoutVariant1, LayoutVariant2, LayoutVariant3:
		return fmt.Sprintf("variant%d", int(v))
	default:
		return "unknown"
	}
}

// MarshalText 以名称形式序列化
func (v LayoutVariant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// RawRow 表格中的一行：列名 -> 单元格值
// 单元格值为 string / int64 / float64 / time.Time，空单元格为 nil（不出现在 map 中）
type RawRow map[string]any

// Get 按列名取值，缺失的列返回 nil
func (r RawRow) Get(column string) any {
	if r == nil {
		return nil
	}
	return r[column]
}

// Sheet 已读入内存的工作表
type Sheet struct {
	Name   string   `json:"name"`
	Header []string `json:"header"` // 规范化后的表头，保持原列顺序
	Rows   []RawRow `json:"-"`
}

// ValidationOutcome 单行校验结果，Record 与 Violations 有且只有一个非空
type ValidationOutcome struct {
	Record     *model.BillRecord `json:"record,omitempty"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// Valid 是否通过校验
func (o ValidationOutcome) Valid() bool {
	return o.Record != nil && len(o.Violations) == 0
}
