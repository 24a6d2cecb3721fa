package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 模板引擎业务指标
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	RecordsUpserted prometheus.Counter
	RecordsSkipped  prometheus.Counter
	RecordsRejected prometheus.Counter
	OrdinalLockMiss prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New 创建并注册指标；reg 为 nil 时只创建不注册（测试用）
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "template",
			Name:      "form_resolutions_total",
			Help:      "Visible form resolutions by feature and scheduling mode.",
		}, []string{"feature", "mode"}),
		RecordsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "capture",
			Name:      "records_upserted_total",
			Help:      "Value records written through upsert.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "capture",
			Name:      "records_skipped_total",
			Help:      "Blank value records treated as no-op.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "capture",
			Name:      "records_rejected_total",
			Help:      "Value records rejected by validation.",
		}),
		OrdinalLockMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "template",
			Name:      "ordinal_lock_miss_total",
			Help:      "Ordinal allocations that fell back to unserialized mode.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	if reg != nil {
		reg.MustRegister(m.Resolutions, m.RecordsUpserted, m.RecordsSkipped, m.RecordsRejected, m.OrdinalLockMiss, m.RequestDuration)
	}
	return m
}

// ObserveRequest 记录一次 HTTP 请求耗时
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(latency.Seconds())
}
