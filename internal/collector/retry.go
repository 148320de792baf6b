package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

const (
	// defaultRetryAttempts はソースごとの収集試行回数の上限。
	defaultRetryAttempts = 3
	// defaultRetryBackoff はリトライの初回待機時間。2倍ずつ増加する。
	defaultRetryBackoff = 2 * time.Second
	// maxRetryBackoff はリトライの最大待機時間。
	maxRetryBackoff = 30 * time.Second
)

// collectWithRetry はソースの収集を指数バックオフ付きでリトライする。
// RSSやReddit APIの一時的な失敗（レート制限、瞬断）を吸収するための短期リトライで、
// コンテキストのキャンセルで待機を打ち切る。
func collectWithRetry(ctx context.Context, source Source, logger *slog.Logger, attempts int, backoff time.Duration) ([]model.Article, error) {
	var lastErr error
	delay := backoff

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			logger.Warn("収集をリトライします",
				slog.String("source", source.Name()),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxRetryBackoff {
				delay = maxRetryBackoff
			}
		}

		articles, err := source.Collect(ctx)
		if err == nil {
			return articles, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%d回の試行がすべて失敗しました: %w", attempts, lastErr)
}
