// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   prometheus.Histogram
	recordsCreated prometheus.Counter
	recordsUpdated prometheus.Counter
	recordsDeleted prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stash_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stash_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stash_records_created_total",
			Help: "作成されたレコードの合計数",
		}),
		recordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stash_records_updated_total",
			Help: "更新されたレコードの合計数",
		}),
		recordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stash_records_deleted_total",
			Help: "削除されたレコードの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.recordsCreated,
		c.recordsUpdated,
		c.recordsDeleted,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストをメソッド・ステータスコード別に記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPDuration はHTTPリクエストのレイテンシを記録する。
func (c *Collector) RecordHTTPDuration(duration time.Duration) {
	c.httpDuration.Observe(duration.Seconds())
}

// RecordCreated はレコード作成を記録する。
func (c *Collector) RecordCreated() {
	c.recordsCreated.Inc()
}

// RecordUpdated はレコード更新を記録する。
func (c *Collector) RecordUpdated() {
	c.recordsUpdated.Inc()
}

// RecordDeleted はレコード削除を記録する。
func (c *Collector) RecordDeleted() {
	c.recordsDeleted.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
