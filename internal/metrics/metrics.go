package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"method", "route", "status"},
	)

	// 上游调用延迟（秒）
	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_upstream_call_duration_seconds",
			Help:    "Upstream API call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"upstream", "outcome"},
	)

	// 本地保存失败计数
	LocalSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_local_save_failures_total",
			Help: "Total number of best-effort local upload copies that failed",
		},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordUpstreamCall 记录上游调用延迟，outcome 为 success、rejected 或 failed
func RecordUpstreamCall(upstream, outcome string, duration time.Duration) {
	UpstreamCallDuration.WithLabelValues(upstream, outcome).Observe(duration.Seconds())
}

// IncrementLocalSaveFailures 增加本地保存失败计数
func IncrementLocalSaveFailures() {
	LocalSaveFailures.Inc()
}
