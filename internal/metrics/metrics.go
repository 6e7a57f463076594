package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_dataset_loads_total",
		Help: "Total number of dataset file loads",
	}, []string{"dataset", "format"})
	DatasetLoadErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_dataset_load_errors_total",
		Help: "Total dataset load failures by kind (not_found, parse, io)",
	}, []string{"dataset", "format", "kind"})
	DatasetLoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geodata_dataset_load_duration_ms",
		Help:    "Dataset file load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"dataset", "format"})
	SnapshotReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_snapshot_reloads_total",
		Help: "Snapshot rebuilds by status",
	}, []string{"status"})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_requests_total",
		Help: "Total API requests by route and status class",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geodata_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_empty_results_total",
		Help: "Lookups and searches that matched nothing",
	}, []string{"route"})
	UsageWriteFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodata_usage_write_fail_total",
		Help: "Failed writes to the usage counter store",
	})
	VisitorBloomErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodata_visitor_bloom_errors_total",
		Help: "Redis errors during visitor de-duplication",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geodata_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetLoadErrorsTotal)
	prometheus.MustRegister(DatasetLoadDurationMs)
	prometheus.MustRegister(SnapshotReloadsTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(UsageWriteFailTotal)
	prometheus.MustRegister(VisitorBloomErrorsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
