package scoring

// ServiceClass 服务分类：编码 + 名称
type ServiceClass struct {
	Code int    `json:"service_class"`
	Name string `json:"service_name"`
}

// ServiceClasses 固定的服务分类表
var ServiceClasses = []ServiceClass{
	{Code: 1, Name: "консультация"},
	{Code: 2, Name: "лечение"},
	{Code: 3, Name: "стационар"},
	{Code: 4, Name: "диагностика"},
	{Code: 5, Name: "лаборатория"},
}

// LookupServiceClass 按编码查找分类
func LookupServiceClass(code int) (ServiceClass, bool) {
	for _, c := range ServiceClasses {
		if c.Code == code {
			return c, true
		}
	}
	return ServiceClass{}, false
}
