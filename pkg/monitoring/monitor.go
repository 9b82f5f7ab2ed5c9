package monitoring

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GatewayAttempts 按来源统计每次后端尝试的结果
	GatewayAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_gateway_attempts_total",
			Help: "Backend attempts by the content gateway",
		},
		[]string{"operation", "source", "outcome"},
	)

	// DegradedServes 主数据服务失败但备用路径成功的次数
	DegradedServes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_gateway_degraded_total",
			Help: "Requests served by a fallback source after primary failure",
		},
		[]string{"operation"},
	)

	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_cache_ops_total",
			Help: "Offline cache store operations",
		},
		[]string{"operation", "outcome"},
	)

	SubmissionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_submission_failures_total",
			Help: "Best-effort result submissions that did not reach any backend",
		},
	)

	SynthesizedBlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_synthesized_blocks_total",
			Help: "Block descriptors synthesized client-side when no server block was available",
		},
	)
)

func Init() {
	prometheus.MustRegister(GatewayAttempts)
	prometheus.MustRegister(DegradedServes)
	prometheus.MustRegister(CacheOps)
	prometheus.MustRegister(SubmissionFailures)
	prometheus.MustRegister(SynthesizedBlocks)
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
