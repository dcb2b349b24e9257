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
// インポートオーケストレーターやミドルウェアから利用する。
type MetricsCollector interface {
	RecordImportCompleted(status string, duration time.Duration)
	RecordImportRecords(processed, success, failed int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	importsTotal   *prometheus.CounterVec
	importDuration prometheus.Histogram
	importRecords  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_imports_total",
			Help: "終端状態別のインポート実行数",
		}, []string{"status"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "katalog_import_duration_seconds",
			Help:    "インポート実行時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		importRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_import_records_total",
			Help: "結果別のインポートレコード数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "katalog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.importsTotal,
		c.importDuration,
		c.importRecords,
		c.httpStatus,
	)

	return c
}

// RecordImportCompleted はインポートの終端化を記録する。
func (c *Collector) RecordImportCompleted(status string, duration time.Duration) {
	c.importsTotal.WithLabelValues(status).Inc()
	c.importDuration.Observe(duration.Seconds())
}

// RecordImportRecords はレコード単位の処理結果を記録する。
func (c *Collector) RecordImportRecords(processed, success, failed int) {
	c.importRecords.WithLabelValues("processed").Add(float64(processed))
	c.importRecords.WithLabelValues("success").Add(float64(success))
	c.importRecords.WithLabelValues("error").Add(float64(failed))
}

// RecordHTTPStatus はHTTPレスポンスのステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler は指定レジストリのメトリクスを公開するHTTPハンドラーを返す。
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
