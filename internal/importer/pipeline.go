package importer

import (
	"billingest/internal/config"
	"billingest/internal/model"
	"billingest/internal/parser"
	"billingest/internal/scoring"
)

// Pipeline 账单表处理流水线：识别布局 -> 逐行映射 -> 校验 -> 评分
type Pipeline struct {
	enricher *scoring.Enricher
}

// NewPipeline 创建流水线，enricher 为 nil 时使用随机评分
func NewPipeline(enricher *scoring.Enricher) *Pipeline {
	if enricher == nil {
		enricher = scoring.NewEnricher(nil, nil, scoring.DefaultFraudThreshold)
	}
	return &Pipeline{enricher: enricher}
}

// NewEnricher 按导入配置组装评分器：随机种子、分类策略与风控阈值
// 固定种子时评分器用 seed，分类器用 seed+1，两者的随机序列互不相关
func NewEnricher(cfg config.ImportConfig) *scoring.Enricher {
	var fraudOpts, classOpts []scoring.Option
	if cfg.RandomSeed != 0 {
		fraudOpts = append(fraudOpts, scoring.WithSeed(cfg.RandomSeed))
		classOpts = append(classOpts, scoring.WithSeed(classifierSeed(cfg.RandomSeed)))
	}

	var classifier scoring.ServiceClassifier = scoring.NewRandomClassifier(classOpts...)
	if cfg.Classifier == config.ClassifierKeyword {
		classifier = scoring.NewKeywordClassifier(classifier)
	}
	return scoring.NewEnricher(scoring.NewRandomFraudScorer(fraudOpts...), classifier, cfg.FraudThreshold)
}

// classifierSeed 分类器种子，避开 0（WithSeed 将 0 视为未设置）
func classifierSeed(seed int64) int64 {
	if seed == -1 {
		return -2
	}
	return seed + 1
}

// Process 处理整个工作表
// 返回按输入顺序排列的有效账单，以及无效行的错误报告（行号从 1 开始）
func (p *Pipeline) Process(sheet *parser.Sheet) ([]model.EnrichedBill, []model.RowViolations) {
	if sheet == nil {
		return nil, nil
	}

	layout := parser.DetectLayout(sheet.Header)
	mapper := parser.NewFieldMapper(layout)
	validator := parser.NewValidator(layout)

	bills := make([]model.EnrichedBill, 0, len(sheet.Rows))
	var report []model.RowViolations
	for i, row := range sheet.Rows {
		outcome := validator.Validate(mapper.Map(row))
		if !outcome.Valid() {
			report = append(report, model.RowViolations{
				Row:        i + 1,
				Violations: outcome.Violations,
			})
			continue
		}
		bill := p.enricher.Enrich(*outcome.Record)
		bill.Row = i + 1
		bills = append(bills, bill)
	}
	return bills, report
}
