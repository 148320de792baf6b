package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

func TestCollectWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	source := &mockSource{
		name: "hatena",
		collectFn: func(ctx context.Context) ([]model.Article, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("一時的なエラー")
			}
			return []model.Article{{Title: "A", URL: "https://example.com/a"}}, nil
		},
	}

	articles, err := collectWithRetry(context.Background(), source, discardLogger(), 3, time.Millisecond)
	if err != nil {
		t.Fatalf("collectWithRetry failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(articles) != 1 {
		t.Errorf("len(articles) = %d, want 1", len(articles))
	}
}

func TestCollectWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	source := &mockSource{
		name: "hatena",
		collectFn: func(ctx context.Context) ([]model.Article, error) {
			calls++
			return nil, errors.New("恒常的なエラー")
		},
	}

	if _, err := collectWithRetry(context.Background(), source, discardLogger(), 3, time.Millisecond); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCollectWithRetry_NoRetryOnFirstSuccess(t *testing.T) {
	calls := 0
	source := &mockSource{
		name: "hatena",
		collectFn: func(ctx context.Context) ([]model.Article, error) {
			calls++
			return nil, nil
		},
	}

	if _, err := collectWithRetry(context.Background(), source, discardLogger(), 3, time.Millisecond); err != nil {
		t.Fatalf("collectWithRetry failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCollectWithRetry_CancelledContext(t *testing.T) {
	source := &mockSource{
		name: "hatena",
		collectFn: func(ctx context.Context) ([]model.Article, error) {
			return nil, errors.New("一時的なエラー")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collectWithRetry(ctx, source, discardLogger(), 3, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
