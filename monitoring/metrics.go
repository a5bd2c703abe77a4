// Package monitoring 提供Prometheus指标
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 估价路径标签
const (
	PathModel    = "model"
	PathFallback = "fallback"
	PathCache    = "cache"
)

var (
	// HTTPRequests 按路由和状态码统计的请求数
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "homeprice_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"route", "status"},
	)
	// HTTPDuration 请求延迟
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "homeprice_http_request_duration_seconds", Help: "HTTP latency", Buckets: []float64{0.001, 0.005, 0.02, 0.1, 0.3, 1, 5}},
		[]string{"route"},
	)
	// Predictions 按路径统计的估价次数
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "homeprice_predictions_total", Help: "Estimates served by path"},
		[]string{"path"},
	)
	// PredictionErrors 被拒绝的估价请求
	PredictionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "homeprice_prediction_errors_total", Help: "Rejected estimate requests by reason"},
		[]string{"reason"},
	)
	// ArtifactLoads 产物加载次数
	ArtifactLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "homeprice_artifact_loads_total", Help: "Artifact load attempts by artifact and outcome"},
		[]string{"artifact", "outcome"},
	)
	// ArtifactsReady 模式和模型均已加载时为1
	ArtifactsReady = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "homeprice_artifacts_ready", Help: "1 when both schema and model are loaded"},
	)
	// Locations 已加载的位置数量
	Locations = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "homeprice_locations", Help: "Locations in the loaded schema"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Predictions, PredictionErrors, ArtifactLoads, ArtifactsReady, Locations)
}

// Handler 返回默认注册表的指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
