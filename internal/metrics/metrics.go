// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 収集ジョブやサービス層から利用する。
type MetricsCollector interface {
	RecordCollectSuccess(source string)
	RecordCollectFailure(source string, reason string)
	RecordHTTPStatus(statusCode int)
	RecordCollectLatency(source string, duration time.Duration)
	RecordArticlesCollected(source string, count int)
	RecordReportWritten()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	collectSuccess    *prometheus.CounterVec
	collectFail       *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	collectLatency    *prometheus.HistogramVec
	articlesCollected *prometheus.CounterVec
	reportsWritten    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		collectSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendview_collect_success_total",
			Help: "ソース別のデータ収集成功の合計数",
		}, []string{"source"}),
		collectFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendview_collect_fail_total",
			Help: "ソース別のデータ収集失敗の合計数",
		}, []string{"source", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendview_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		collectLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendview_collect_latency_seconds",
			Help:    "ソース別のデータ収集レイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		articlesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendview_articles_collected_total",
			Help: "ソース別の収集記事の合計数",
		}, []string{"source"}),
		reportsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendview_reports_written_total",
			Help: "書き込まれたレポートの合計数",
		}),
	}

	reg.MustRegister(
		c.collectSuccess,
		c.collectFail,
		c.httpStatus,
		c.collectLatency,
		c.articlesCollected,
		c.reportsWritten,
	)

	return c
}

// RecordCollectSuccess はソースの収集成功を記録する。
func (c *Collector) RecordCollectSuccess(source string) {
	c.collectSuccess.WithLabelValues(source).Inc()
}

// RecordCollectFailure はソースの収集失敗を記録する。
func (c *Collector) RecordCollectFailure(source string, reason string) {
	c.collectFail.WithLabelValues(source, reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCollectLatency はソースの収集レイテンシを記録する。
func (c *Collector) RecordCollectLatency(source string, duration time.Duration) {
	c.collectLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordArticlesCollected はソースから収集した記事数を記録する。
func (c *Collector) RecordArticlesCollected(source string, count int) {
	c.articlesCollected.WithLabelValues(source).Add(float64(count))
}

// RecordReportWritten はレポートの書き込みを記録する。
func (c *Collector) RecordReportWritten() {
	c.reportsWritten.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
