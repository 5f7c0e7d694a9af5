package parser

// layoutSignature 布局识别特征：表头中必须同时出现的列名
type layoutSignature struct {
	variant LayoutVariant
	columns []string
}

// 按优先级排列，前面的布局先匹配
var layoutSignatures = []layoutSignature{
	{variant: LayoutVariant1, columns: []string{"client_name", "client_org"}},
	{variant: LayoutVariant2, columns: []string{"client", "organization"}},
}

// fallbackLayout 所有特征都不匹配时使用的布局
const fallbackLayout = LayoutVariant3

// LayoutRecognizer 账单表布局识别器
type LayoutRecognizer struct {
	signatures []layoutSignature
	fallback   LayoutVariant
}

// NewLayoutRecognizer 创建识别器
func NewLayoutRecognizer() *LayoutRecognizer {
	return &LayoutRecognizer{
		signatures: layoutSignatures,
		fallback:   fallbackLayout,
	}
}

// Recognize 根据表头识别布局，总能返回一个布局
func (r *LayoutRecognizer) Recognize(header []string) LayoutVariant {
	present := make(map[string]struct{}, len(header))
	for _, col := range header {
		present[NormalizeColumnName(col)] = struct{}{}
	}

	for _, sig := range r.signatures {
		if containsAll(present, sig.columns) {
			return sig.variant
		}
	}
	return r.fallback
}

// DetectLayout 使用默认识别器识别布局
func DetectLayout(header []string) LayoutVariant {
	return NewLayoutRecognizer().Recognize(header)
}

func containsAll(present map[string]struct{}, columns []string) bool {
	for _, col := range columns {
		if _, ok := present[col]; !ok {
			return false
		}
	}
	return true
}
