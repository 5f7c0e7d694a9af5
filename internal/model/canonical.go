package model

// Field 规范字段名
type Field string

const (
	FieldClientName Field = "client_name"
	FieldClientOrg  Field = "client_org"
	FieldNumber     Field = "number"
	FieldSumm       Field = "summ"
	FieldDate       Field = "date"
	FieldService    Field = "service"
)

// CanonicalFields 规范记录的全部字段（顺序固定）
var CanonicalFields = []Field{
	FieldClientName,
	FieldClientOrg,
	FieldNumber,
	FieldSumm,
	FieldDate,
	FieldService,
}

// CanonicalRecord 规范化后的账单记录
// 各字段保留读取时的动态类型（string / int64 / float64 / time.Time / nil），类型检查留给校验阶段
type CanonicalRecord struct {
	ClientName any `json:"client_name"`
	ClientOrg  any `json:"client_org"`
	Number     any `json:"number"`
	Summ       any `json:"summ"`
	Date       any `json:"date"`
	Service    any `json:"service"`
}

// Get 按规范字段名取值
func (r *CanonicalRecord) Get(field Field) any {
	switch field {
	case FieldClientName:
		return r.ClientName
	case FieldClientOrg:
		return r.ClientOrg
	case FieldNumber:
		return r.Number
	case FieldSumm:
		return r.Summ
	case FieldDate:
		return r.Date
	case FieldService:
		return r.Service
	}
	return nil
}

// Set 按规范字段名赋值，未知字段忽略
func (r *CanonicalRecord) Set(field Field, value any) {
	switch field {
	case FieldClientName:
		r.ClientName = value
	case FieldClientOrg:
		r.ClientOrg = value
	case FieldNumber:
		r.Number = value
	case FieldSumm:
		r.Summ = value
	case FieldDate:
		r.Date = value
	case FieldService:
		r.Service = value
	}
}
