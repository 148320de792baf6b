// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/silmo-yokohama/trendview/internal/collector"
	"github.com/silmo-yokohama/trendview/internal/config"
	"github.com/silmo-yokohama/trendview/internal/deepdive"
	"github.com/silmo-yokohama/trendview/internal/favorite"
	"github.com/silmo-yokohama/trendview/internal/handler"
	"github.com/silmo-yokohama/trendview/internal/logger"
	"github.com/silmo-yokohama/trendview/internal/metrics"
	"github.com/silmo-yokohama/trendview/internal/middleware"
	"github.com/silmo-yokohama/trendview/internal/report"
	"github.com/silmo-yokohama/trendview/internal/security"
	"github.com/silmo-yokohama/trendview/internal/storage"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("data_dir", cfg.DataDir),
	)

	switch cmd {
	case CommandCollect:
		return runCollect(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// ファイルストアと全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ファイルストア
	store := storage.NewFileStore(cfg.DataDir)
	if err := store.Ping(); err != nil {
		return fmt.Errorf("data directory is not accessible: %w", err)
	}

	slog.Info("file store ready", slog.String("root", cfg.DataDir))

	// 2. セキュリティサービスの初期化
	sanitizer := security.NewTextSanitizer()
	pathGuard := security.NewPathGuard()

	// 3. ドメインサービスの初期化
	reportService := report.NewService(store, sanitizer)
	deepDiveService := deepdive.NewService(store, pathGuard)
	favoriteService := favorite.NewService(store)

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	metricsCollector := metrics.NewCollector(registry)

	// 5. レートリミッターの構築（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.MutationRate = rate.Limit(float64(cfg.RateLimitMutation) / 60.0)
	rateLimiterCfg.MutationBurst = cfg.RateLimitMutation
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 6. ルーターの構築
	deps := &handler.RouterDeps{
		HealthChecker:     store,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		MetricsGatherer: registry,
		Metrics:         metricsCollector,

		ReportService:   reportService,
		DeepDiveService: deepDiveService,
		FavoriteService: favoriteService,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runCollect はヘッドライン収集ジョブを1回実行する。
// 当日分（JST）のレポートが既に存在する場合は何も書き込まずに終了する。
func runCollect(cfg *config.Config) error {
	store := storage.NewFileStore(cfg.DataDir)
	if err := store.Ping(); err != nil {
		return fmt.Errorf("data directory is not accessible: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.CollectTimeout}
	log := slog.Default()

	redditClient := collector.NewRedditClient(httpClient, log, cfg.CollectUserAgent)

	sources := []collector.Source{
		collector.NewHatenaSource(httpClient, log, cfg.CollectUserAgent, cfg.HatenaFeedURL, cfg.CollectMaxPerFeed),
		collector.NewYahooSource(httpClient, log, cfg.CollectUserAgent, cfg.YahooFeedURL, cfg.CollectMaxPerFeed),
		collector.NewRedditSource(redditClient, log, cfg.RedditSubreddits, cfg.RedditLimit, "テクノロジー"),
	}

	registry := prometheus.NewRegistry()
	metricsCollector := metrics.NewCollector(registry)

	runner := collector.NewRunner(store, sources, metricsCollector, log)

	// Ctrl+Cで収集途中でも中断できるようにする
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("collect failed: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
