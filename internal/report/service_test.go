package report

import (
	"context"
	"errors"
	"testing"

	"github.com/silmo-yokohama/trendview/internal/model"
	"github.com/silmo-yokohama/trendview/internal/security"
	"github.com/silmo-yokohama/trendview/internal/storage"
)

// newTestService はテンポラリディレクトリ上のFileStoreを使うサービスを生成する。
func newTestService(t *testing.T) (*Service, *storage.FileStore) {
	t.Helper()
	store := storage.NewFileStore(t.TempDir())
	return NewService(store, security.NewTextSanitizer()), store
}

func seedReport(t *testing.T, store *storage.FileStore, date string) *model.HeadlineReport {
	t.Helper()
	by := model.NewCategoryCounts()
	by.Set("AI/LLM", 1)
	by.Set("フロントエンド", 1)
	r := &model.HeadlineReport{
		Date:        date,
		GeneratedAt: date + "T07:00:00",
		DataSources: []string{"はてなブックマーク"},
		Summary:     model.Summary{Total: 2, ByCategory: by},
		Articles: []model.Article{
			{ID: "art-1", Title: "記事1", URL: "https://example.com/1", Category: "AI/LLM", Source: model.SourceHatena, Score: 100, ScoreLabel: "100 users", Summary: "概要1"},
			{ID: "art-2", Title: "記事2<script>alert(1)</script>", URL: "https://example.com/2", Category: "フロントエンド", Source: model.SourceHatena, Score: 50, ScoreLabel: "50 users", Summary: "<b>概要2</b>"},
		},
	}
	if err := store.WriteReport(date, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "2026-02-11")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReportNotFound {
		t.Errorf("Get() error = %v, want REPORT_NOT_FOUND", err)
	}
}

func TestService_Get_SanitizesTextFields(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, "2026-02-11")

	got, err := svc.Get(context.Background(), "2026-02-11")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Articles[1].Title != "記事2" {
		t.Errorf("Title = %q, want 記事2", got.Articles[1].Title)
	}
	if got.Articles[1].Summary != "概要2" {
		t.Errorf("Summary = %q, want 概要2", got.Articles[1].Summary)
	}

	// サニタイズはレスポンスのみで、ファイル内容には反映しない
	raw, err := store.ReadReport("2026-02-11")
	if err != nil {
		t.Fatal(err)
	}
	if raw.Articles[1].Summary != "<b>概要2</b>" {
		t.Errorf("stored summary mutated: %q", raw.Articles[1].Summary)
	}
}

func TestService_SetArticleChecked_RoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, "2026-02-11")

	result, err := svc.SetArticleChecked(context.Background(), "2026-02-11", "art-1", true)
	if err != nil {
		t.Fatalf("SetArticleChecked() error = %v", err)
	}
	if result.ArticleID != "art-1" || !result.Checked {
		t.Errorf("result = %+v, want {art-1 true}", result)
	}

	got, err := store.ReadReport("2026-02-11")
	if err != nil {
		t.Fatal(err)
	}
	if !got.FindArticle("art-1").Checked {
		t.Error("checked = false after round trip, want true")
	}
	// 他の記事は不変
	other := got.FindArticle("art-2")
	if other.Checked || other.Score != 50 {
		t.Errorf("art-2 mutated: %+v", other)
	}
}

func TestService_SetArticleChecked_ReportNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetArticleChecked(context.Background(), "2026-02-11", "art-1", true)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReportNotFound {
		t.Errorf("error = %v, want REPORT_NOT_FOUND", err)
	}
}

func TestService_SetArticleChecked_InvalidDate(t *testing.T) {
	svc, _ := newTestService(t)

	for _, date := range []string{"ab", "2026-2-1", "2026/02/11", "2026-02-11x"} {
		_, err := svc.SetArticleChecked(context.Background(), date, "art-1", true)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeReportNotFound {
			t.Errorf("date %q: error = %v, want REPORT_NOT_FOUND", date, err)
		}
	}
}

func TestService_SetArticleChecked_ArticleNotFound(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, "2026-02-11")

	_, err := svc.SetArticleChecked(context.Background(), "2026-02-11", "nope", true)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeArticleNotFound {
		t.Errorf("error = %v, want ARTICLE_NOT_FOUND", err)
	}
}

func TestService_ListDates(t *testing.T) {
	svc, store := newTestService(t)
	seedReport(t, store, "2026-02-10")
	seedReport(t, store, "2026-02-11")

	dates, err := svc.ListDates(context.Background())
	if err != nil {
		t.Fatalf("ListDates() error = %v", err)
	}
	if len(dates) != 2 || dates[0].Date != "2026-02-11" {
		t.Errorf("dates = %+v, want newest first", dates)
	}
}
