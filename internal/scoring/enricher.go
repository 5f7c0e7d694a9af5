package scoring

import (
	"math"

	"billingest/internal/model"
)

// Enricher 为校验通过的账单附加风控评分与服务分类
type Enricher struct {
	fraud      FraudScorer
	classifier ServiceClassifier
	threshold  float64
}

// NewEnricher 创建 Enricher；nil 参数使用随机实现，threshold 不在 (0, 1] 时使用默认阈值
func NewEnricher(fraud FraudScorer, classifier ServiceClassifier, threshold float64) *Enricher {
	if fraud == nil {
		fraud = NewRandomFraudScorer()
	}
	if classifier == nil {
		classifier = NewRandomClassifier()
	}
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		threshold = DefaultFraudThreshold
	}
	return &Enricher{
		fraud:      fraud,
		classifier: classifier,
		threshold:  threshold,
	}
}

// Threshold 当前风控阈值
func (e *Enricher) Threshold() float64 {
	return e.threshold
}

// Enrich 计算评分与分类
func (e *Enricher) Enrich(bill model.BillRecord) model.EnrichedBill {
	score := clampScore(e.fraud.FraudScore(bill))

	// 分类名称始终以分类表为准，未知编码归入第一类
	class, ok := LookupServiceClass(e.classifier.Classify(bill).Code)
	if !ok {
		class = ServiceClasses[0]
	}

	return model.EnrichedBill{
		BillRecord:   bill,
		FraudScore:   score,
		Fraud:        score >= e.threshold,
		ServiceClass: class.Code,
		ServiceName:  class.Name,
	}
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}
