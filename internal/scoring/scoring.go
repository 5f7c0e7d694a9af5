// Package scoring 账单风控评分与服务分类
package scoring

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"billingest/internal/model"
)

// DefaultFraudThreshold 风控阈值，评分达到该值的账单计入机构的 fraud_weight
const DefaultFraudThreshold = 0.9

// FraudScorer 计算账单的风控评分，结果应位于 [0, 1]
type FraudScorer interface {
	FraudScore(bill model.BillRecord) float64
}

// ServiceClassifier 为账单选择一个服务分类
type ServiceClassifier interface {
	Classify(bill model.BillRecord) ServiceClass
}

// FraudScorerFunc 函数适配器
type FraudScorerFunc func(bill model.BillRecord) float64

// FraudScore 调用 f(bill)
func (f FraudScorerFunc) FraudScore(bill model.BillRecord) float64 { return f(bill) }

// ClassifierFunc 函数适配器
type ClassifierFunc func(bill model.BillRecord) ServiceClass

// Classify 调用 f(bill)
func (f ClassifierFunc) Classify(bill model.BillRecord) ServiceClass { return f(bill) }

// Option 随机源配置
type Option func(*lockedRand)

// WithSeed 固定随机种子，0 表示使用当前时间
func WithSeed(seed int64) Option {
	return func(r *lockedRand) {
		if seed != 0 {
			r.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // 评分不用于安全场景
		}
	}
}

// lockedRand 并发安全的随机源
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(opts ...Option) *lockedRand {
	r := &lockedRand{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // 评分不用于安全场景
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *lockedRand) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// RandomFraudScorer 均匀分布的占位评分器，后续可替换为真实模型
type RandomFraudScorer struct {
	rng *lockedRand
}

// NewRandomFraudScorer 创建随机评分器
func NewRandomFraudScorer(opts ...Option) *RandomFraudScorer {
	return &RandomFraudScorer{rng: newLockedRand(opts...)}
}

// FraudScore 返回 [0, 1) 内的随机值
func (s *RandomFraudScorer) FraudScore(model.BillRecord) float64 {
	return s.rng.float64()
}

// RandomClassifier 在分类表中均匀随机选择
type RandomClassifier struct {
	rng *lockedRand
}

// NewRandomClassifier 创建随机分类器
func NewRandomClassifier(opts ...Option) *RandomClassifier {
	return &RandomClassifier{rng: newLockedRand(opts...)}
}

// Classify 随机返回一个分类
func (c *RandomClassifier) Classify(model.BillRecord) ServiceClass {
	return ServiceClasses[c.rng.intn(len(ServiceClasses))]
}

// KeywordClassifier 按服务描述中的关键词分类，匹配不到时交给 fallback
type KeywordClassifier struct {
	keywords map[int][]string
	fallback ServiceClassifier
}

// 各分类的词干，按分类编码顺序匹配
var defaultKeywords = map[int][]string{
	1: {"консультац", "прием", "приём", "осмотр"},
	2: {"лечени", "терапи", "процедур"},
	3: {"стационар", "госпитал", "палат"},
	4: {"диагност", "узи", "мрт", "кт ", "рентген", "экг"},
	5: {"лаборатор", "анализ", "тест"},
}

// NewKeywordClassifier 创建关键词分类器，fallback 为 nil 时使用随机分类
func NewKeywordClassifier(fallback ServiceClassifier) *KeywordClassifier {
	if fallback == nil {
		fallback = NewRandomClassifier()
	}
	return &KeywordClassifier{
		keywords: defaultKeywords,
		fallback: fallback,
	}
}

// Classify 返回第一个命中关键词的分类
func (c *KeywordClassifier) Classify(bill model.BillRecord) ServiceClass {
	text := strings.ToLower(bill.Service) + " "
	for _, class := range ServiceClasses {
		for _, kw := range c.keywords[class.Code] {
			if strings.Contains(text, kw) {
				return class
			}
		}
	}
	return c.fallback.Classify(bill)
}
