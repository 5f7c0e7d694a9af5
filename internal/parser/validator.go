package parser

import (
	"fmt"
	"math"
	"strings"
	"time"

	"billingest/internal/model"
)

// fieldCheck 单个字段的校验规则，message 中的 %s 替换为源列名
type fieldCheck struct {
	field   model.Field
	valid   func(value any) bool
	message string
}

// 校验顺序即错误列表的顺序
var billChecks = []fieldCheck{
	{field: model.FieldSumm, valid: isNumber, message: "%s must be a number"},
	{field: model.FieldNumber, valid: isInteger, message: "%s must be a number"},
	{field: model.FieldService, valid: isServiceText, message: "%s must be non-empty (a lone '-' counts as empty)"},
	{field: model.FieldClientName, valid: isNonEmptyText, message: "%s must be non-empty"},
	{field: model.FieldClientOrg, valid: isNonEmptyText, message: "%s must be non-empty"},
	{field: model.FieldDate, valid: isCompleteDate, message: "%s must be a complete date"},
}

// Validator 账单记录校验器
type Validator struct {
	variant LayoutVariant
}

// NewValidator 创建校验器，错误中的字段名使用该布局的源列名
func NewValidator(variant LayoutVariant) *Validator {
	return &Validator{variant: variant}
}

// Validate 校验规范记录，收集全部错误而不是遇到第一个就返回
func (v *Validator) Validate(record model.CanonicalRecord) ValidationOutcome {
	var violations []model.Violation
	for _, c := range billChecks {
		if c.valid(record.Get(c.field)) {
			continue
		}
		alias := Alias(v.variant, c.field)
		violations = append(violations, model.Violation{
			Field:   alias,
			Message: fmt.Sprintf(c.message, alias),
		})
	}
	if len(violations) > 0 {
		return ValidationOutcome{Violations: violations}
	}

	// 通过校验的数值可无损转换，见 model.BillRecord
	return ValidationOutcome{Record: &model.BillRecord{
		ClientName: record.ClientName.(string),
		ClientOrg:  record.ClientOrg.(string),
		Number:     asInt64(record.Number),
		Summ:       asFloat64(record.Summ),
		Date:       asTime(record.Date),
		Service:    record.Service.(string),
	}}
}

// Validate 按布局校验规范记录
func Validate(record model.CanonicalRecord, variant LayoutVariant) ValidationOutcome {
	return NewValidator(variant).Validate(record)
}

func isNumber(value any) bool {
	switch n := value.(type) {
	case int, int32, int64:
		return true
	case float32:
		return isFinite(float64(n))
	case float64:
		return isFinite(n)
	}
	return false
}

// isInteger 整数；整值的浮点数也接受
func isInteger(value any) bool {
	switch n := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return isFinite(n) && n == math.Trunc(n) && math.Abs(n) <= maxExactFloatInt
	}
	return false
}

func isNonEmptyText(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) != ""
}

// isServiceText 去掉首尾空白后再去掉首尾的 '-'，结果不能为空
func isServiceText(value any) bool {
	s, ok := value.(string)
	return ok && strings.Trim(strings.TrimSpace(s), "-") != ""
}

func isCompleteDate(value any) bool {
	switch d := value.(type) {
	case time.Time:
		return !d.IsZero()
	case *time.Time:
		return d != nil && !d.IsZero()
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func asInt64(value any) int64 {
	switch n := value.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat64(value any) float64 {
	switch n := value.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func asTime(value any) time.Time {
	switch d := value.(type) {
	case time.Time:
		return d
	case *time.Time:
		return *d
	}
	return time.Time{}
}
