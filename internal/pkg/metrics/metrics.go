package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 登録試行の総数（status: success, already_registered, visitor_not_found, invalid_state, error）
	RegistrationsTotal *prometheus.CounterVec

	// 1回の展開で生成されたインスタンス数の分布
	InstancesGenerated prometheus.Histogram

	// 再生成（未来インスタンスの削除＋再展開）の総数
	RegenerationsTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrations_total",
				Help: "Total number of registration attempts",
			},
			[]string{"status"},
		),
		InstancesGenerated: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "event_instances_generated",
				Help:    "Number of instances generated per expansion",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
		),
		RegenerationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "event_regenerations_total",
				Help: "Total number of future-instance regenerations",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.InstancesGenerated,
		m.RegenerationsTotal,
		m.DistributedLockDuration,
	)
	return m
}
