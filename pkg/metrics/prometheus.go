// Package metrics 导入流程的 Prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 行处理结果
const (
	OutcomeImported   = "imported"
	OutcomeInvalid    = "invalid"
	OutcomeUnresolved = "unresolved"
	OutcomeDuplicate  = "duplicate"
)

// Manager 管理全部导入指标，nil Manager 的方法均为空操作
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	rowsTotal      *prometheus.CounterVec
	fraudFlagged   prometheus.Counter
	importsTotal   *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
}

// NewManager 创建指标管理器，默认使用独立 registry 并附带 Go 运行时指标
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "billingest",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rows_total",
		Help:      "Spreadsheet rows processed by import kind and outcome",
	}, []string{"kind", "outcome"})

	m.fraudFlagged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "fraud_flags_total",
		Help:      "Imported bills whose fraud score reached the threshold",
	})

	m.importsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "imports_total",
		Help:      "Uploads processed by import kind and final status",
	}, []string{"kind", "status"})

	m.importDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "import_duration_seconds",
		Help:      "Wall time of one upload from open to commit",
		Buckets:   m.histogramBuckets,
	}, []string{"kind"})
}

// ObserveRows 记录 n 行指定结果
func (m *Manager) ObserveRows(kind, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

// ObserveFraudFlags 记录高风险账单数量
func (m *Manager) ObserveFraudFlags(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fraudFlagged.Add(float64(n))
}

// ObserveImport 记录一次导入的状态与耗时
func (m *Manager) ObserveImport(kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(kind, status).Inc()
	m.importDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Registry 指标 registry
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
