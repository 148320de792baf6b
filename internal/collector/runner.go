package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/silmo-yokohama/trendview/internal/metrics"
	"github.com/silmo-yokohama/trendview/internal/model"
)

// ReportStore はレポートの読み書きインターフェース。
// storage.FileStoreの部分集合として定義する。
type ReportStore interface {
	ReadReport(date string) (*model.HeadlineReport, error)
	WriteReport(date string, report *model.HeadlineReport) error
}

// jst はレポート日付の基準タイムゾーン。
var jst = time.FixedZone("JST", 9*60*60)

// Runner は全ソースからの収集とレポート草稿の書き込みを実行する。
type Runner struct {
	store   ReportStore
	sources []Source
	metrics metrics.MetricsCollector
	logger  *slog.Logger

	now           func() time.Time // テストで差し替え可能
	retryAttempts int
	retryBackoff  time.Duration
}

// NewRunner はRunnerの新しいインスタンスを生成する。
func NewRunner(store ReportStore, sources []Source, collector metrics.MetricsCollector, logger *slog.Logger) *Runner {
	return &Runner{
		store:         store,
		sources:       sources,
		metrics:       collector,
		logger:        logger,
		now:           time.Now,
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
	}
}

// Run は当日分（JST）のレポート草稿を収集・生成する。
//   - 既に当日のレポートが存在する場合は上書きしない（手動でのキュレーション内容を優先）
//   - 一部ソースの失敗は許容し、残りのソースで継続する
//   - 全ソースが失敗して記事が1件も集まらなかった場合はエラーを返す
func (r *Runner) Run(ctx context.Context) error {
	date := r.now().In(jst).Format("2006-01-02")

	existing, err := r.store.ReadReport(date)
	if err != nil {
		return fmt.Errorf("既存レポートの確認に失敗しました: %w", err)
	}
	if existing != nil {
		r.logger.Info("当日のレポートが既に存在するため収集をスキップします",
			slog.String("date", date),
		)
		return nil
	}

	var articles []model.Article
	var succeeded []string

	for _, source := range r.sources {
		start := time.Now()
		collected, err := collectWithRetry(ctx, source, r.logger, r.retryAttempts, r.retryBackoff)
		r.metrics.RecordCollectLatency(source.Name(), time.Since(start))

		if err != nil {
			r.metrics.RecordCollectFailure(source.Name(), "collect_error")
			r.logger.Error("ソースの収集に失敗しました",
				slog.String("source", source.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}

		r.metrics.RecordCollectSuccess(source.Name())
		r.metrics.RecordArticlesCollected(source.Name(), len(collected))
		r.logger.Info("ソースの収集が完了しました",
			slog.String("source", source.Name()),
			slog.Int("articles_count", len(collected)),
		)

		articles = append(articles, collected...)
		succeeded = append(succeeded, source.Name())
	}

	if len(articles) == 0 {
		return fmt.Errorf("全ソースの収集に失敗しました（%d ソース）", len(r.sources))
	}

	report := BuildReport(date, r.now().In(jst), articles, succeeded)

	if err := r.store.WriteReport(date, report); err != nil {
		return fmt.Errorf("レポートの書き込みに失敗しました: %w", err)
	}
	r.metrics.RecordReportWritten()

	r.logger.Info("レポート草稿を書き込みました",
		slog.String("date", date),
		slog.Int("articles_total", report.Summary.Total),
		slog.Int("categories", report.Summary.ByCategory.Len()),
	)

	return nil
}
