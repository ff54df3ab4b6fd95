package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once 保证指标只注册一次（重复注册同名指标会 panic）。
	once sync.Once

	// HTTPRequestsTotal：累计请求数（Counter），算 QPS/错误率用。
	//
	// labels：
	// - method：HTTP 方法
	// - route：路由模板（用 pattern 如 /api/links/:id，不要用真实 path，否则 label 无限膨胀）
	// - status：状态码字符串
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds：请求耗时分布（Histogram），算 P95/P99 延迟用。
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInflightRequests：正在处理中的请求数（Gauge），观察并发压力。
	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// CacheOperations：缓存操作计数，按层（l1/l2）和结果（hit/miss/error/...）分。
	// 命中率 = hit / (hit + miss)。
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_cache_operations_total",
			Help: "Link cache operations by layer and result.",
		},
		[]string{"layer", "result"},
	)

	// LinkRedirects：跳转成功次数（不含哨兵错误页）。
	LinkRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "link_redirects_total",
			Help: "Total number of successful short link redirects.",
		},
	)

	// ClickUpdateFailures：点击计数写 Redis 失败的次数。
	// 计数是 best-effort，这个指标是观察“丢了多少”的唯一途径。
	ClickUpdateFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_update_failures_total",
			Help: "Total number of failed click counter updates.",
		},
	)
)

// Init 注册全部指标，只允许调用一次生效。
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			CacheOperations,
			LinkRedirects,
			ClickUpdateFailures,
		)
	})
}
