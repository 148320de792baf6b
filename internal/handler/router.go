package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/silmo-yokohama/trendview/internal/metrics"
	"github.com/silmo-yokohama/trendview/internal/middleware"
)

// HealthChecker はヘルスチェックのためにストレージの疎通を確認するインターフェース。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nilの場合は/metricsルートを登録しない）
	MetricsGatherer prometheus.Gatherer
	// ステータスコード計測（nilの場合は計測しない）
	Metrics middleware.HTTPStatusRecorder

	// レポート
	ReportService ReportServiceInterface

	// DeepDive
	DeepDiveService DeepDiveServiceInterface

	// お気に入り
	FavoriteService FavoriteServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → SecurityHeadersMiddleware → LoggingMiddleware → RateLimitMiddleware
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	reportHandler := NewReportHandler(deps.ReportService)
	deepDiveHandler := NewDeepDiveHandler(deps.DeepDiveService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)

	// --- 運用ルート（レート制限の外） ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.Ping(); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)、更新系は追加でRateLimit(Mutation)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// レポート閲覧・チェック状態変更
		r.Route("/api/reports", func(r chi.Router) {
			r.Get("/dates", reportHandler.ListDates)

			r.Route("/{date}", func(r chi.Router) {
				r.Get("/", reportHandler.GetReport)

				// PATCH /api/reports/{date}/articles/{id} - チェック状態変更（更新系レート制限を追加）
				r.With(deps.RateLimiter.MutationMiddleware()).
					Patch("/articles/{id}", reportHandler.SetArticleChecked)
			})
		})

		// DeepDive閲覧
		r.Route("/api/deepdives", func(r chi.Router) {
			r.Get("/", deepDiveHandler.ListDeepDives)
			r.Get("/{month}/{filename}", deepDiveHandler.GetDeepDive)
		})

		// お気に入り管理
		r.Route("/api/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.ListFavorites)
			r.With(deps.RateLimiter.MutationMiddleware()).Post("/", favoriteHandler.AddFavorite)

			// articleIdはスラッシュを含むためワイルドカードで受ける
			r.With(deps.RateLimiter.MutationMiddleware()).Delete("/*", favoriteHandler.RemoveFavorite)
		})
	})

	return r
}
