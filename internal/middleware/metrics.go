package middleware

import (
	"net/http"

	"github.com/hitoshi/katalog/internal/metrics"
)

// NewMetricsMiddleware はレスポンスのステータスコードをコレクターに記録する
// ミドルウェアを返す。/metricsエンドポイント自体の計測は呼び出し側で除外する。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			collector.RecordHTTPStatus(rec.statusCode)
		})
	}
}
