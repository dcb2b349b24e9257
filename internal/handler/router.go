package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/katalog/internal/metrics"
	"github.com/hitoshi/katalog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Collector         metrics.MetricsCollector

	// インポート
	ImportService ImportServiceInterface
	FeedFetcher   FeedFetcherInterface
	ImportLedger  ImportLedgerInterface
	StaleSweeper  StaleSweeperInterface
	MaxUploadSize int64

	// カタログ
	CatalogService CatalogServiceInterface
	CategoryLister CategoryListerInterface

	// プログラム
	ProgramService ProgramServiceInterface

	// 運用系
	DBPinger       DBPinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → CORSMiddleware → MetricsMiddleware → RateLimitMiddleware(General)
//
// 運用系ルート（/healthz、/metrics）はレート制限とメトリクス計測の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	importHandler := NewImportHandler(deps.ImportService, deps.FeedFetcher, deps.ImportLedger, deps.StaleSweeper, deps.MaxUploadSize)
	productHandler := NewProductHandler(deps.CatalogService)
	categoryHandler := NewCategoryHandler(deps.CategoryLister)
	programHandler := NewProgramHandler(deps.ProgramService)
	healthHandler := NewHealthHandler(deps.DBPinger)

	// --- 運用系ルート ---

	r.Get("/healthz", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// --- APIルート ---
	// ミドルウェアスタック: Metrics → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// インポート実行（実行専用レート制限を追加）
		r.With(deps.RateLimiter.ImportMiddleware()).Post("/api/affiliate/import", importHandler.RunImport)

		// インポート履歴
		r.Route("/api/affiliate/imports", func(r chi.Router) {
			r.Get("/", importHandler.ListImports)
			r.Delete("/", importHandler.DeleteImport)
		})

		// 商品カタログ
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		// カテゴリ
		r.Get("/api/categories", categoryHandler.ListCategories)

		// プログラム管理
		r.Route("/api/affiliate-programs", func(r chi.Router) {
			r.Get("/", programHandler.ListPrograms)
			r.Post("/", programHandler.CreateProgram)
			r.Put("/", programHandler.UpdateProgram)
		})
	})

	return r
}
