package collector

import (
	"testing"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

func TestArticleID_DerivesFromURL(t *testing.T) {
	id := ArticleID("https://example.com/article")

	if len(id) != 8 {
		t.Errorf("len(id) = %d, want 8", len(id))
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("id contains non-hex character: %q", id)
			break
		}
	}

	// 同一URLからは常に同じIDが導出される
	if id != ArticleID("https://example.com/article") {
		t.Error("ArticleID should be deterministic")
	}
	// 別URLからは別のID
	if id == ArticleID("https://example.com/other") {
		t.Error("different URLs should derive different IDs")
	}
}

func TestBuildReport_AssignsIDsAndSummary(t *testing.T) {
	generatedAt := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	articles := []model.Article{
		{Title: "A", URL: "https://example.com/a", Category: "AI", Source: model.SourceHatena, Score: 10},
		{Title: "B", URL: "https://example.com/b", Category: "AI", Source: model.SourceHatena, Score: 50},
		{Title: "C", URL: "https://example.com/c", Category: "News", Source: model.SourceYahoo},
	}

	report := BuildReport("2026-02-01", generatedAt, articles, []string{"hatena", "yahoo"})

	if err := report.Validate(); err != nil {
		t.Fatalf("built report should pass validation: %v", err)
	}

	if report.Date != "2026-02-01" {
		t.Errorf("Date = %q, want 2026-02-01", report.Date)
	}
	if report.Summary.Total != 3 {
		t.Errorf("Summary.Total = %d, want 3", report.Summary.Total)
	}
	if got, _ := report.Summary.ByCategory.Get("AI"); got != 2 {
		t.Errorf("ByCategory[AI] = %d, want 2", got)
	}
	if got, _ := report.Summary.ByCategory.Get("News"); got != 1 {
		t.Errorf("ByCategory[News] = %d, want 1", got)
	}

	for _, a := range report.Articles {
		if a.ID == "" {
			t.Errorf("article %q should have an ID", a.Title)
		}
		if a.Checked {
			t.Errorf("article %q should start unchecked", a.Title)
		}
	}

	if len(report.TrendAnalysis) != 0 {
		t.Errorf("TrendAnalysis should be empty, got %d entries", len(report.TrendAnalysis))
	}
}

func TestBuildReport_OrdersByCategoryThenScore(t *testing.T) {
	articles := []model.Article{
		{Title: "ai-low", URL: "https://example.com/1", Category: "AI", Source: model.SourceHatena, Score: 5},
		{Title: "news-1", URL: "https://example.com/2", Category: "News", Source: model.SourceYahoo, Score: 0},
		{Title: "ai-high", URL: "https://example.com/3", Category: "AI", Source: model.SourceHatena, Score: 100},
		{Title: "ai-mid", URL: "https://example.com/4", Category: "AI", Source: model.SourceReddit, Score: 40},
	}

	report := BuildReport("2026-02-01", time.Now(), articles, []string{"hatena", "yahoo", "reddit"})

	var titles []string
	for _, a := range report.Articles {
		titles = append(titles, a.Title)
	}

	// AIカテゴリ（初出）がスコア降順で先、Newsが後
	want := []string{"ai-high", "ai-mid", "ai-low", "news-1"}
	if len(titles) != len(want) {
		t.Fatalf("articles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("articles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}

	// byCategoryのキー順もカテゴリ初出順
	keys := report.Summary.ByCategory.Keys()
	if len(keys) != 2 || keys[0] != "AI" || keys[1] != "News" {
		t.Errorf("ByCategory keys = %v, want [AI News]", keys)
	}
}

func TestBuildReport_DeduplicatesByURL(t *testing.T) {
	articles := []model.Article{
		{Title: "first", URL: "https://example.com/same", Category: "AI", Source: model.SourceHatena, Score: 10},
		{Title: "dup", URL: "https://example.com/same", Category: "AI", Source: model.SourceReddit, Score: 99},
	}

	report := BuildReport("2026-02-01", time.Now(), articles, []string{"hatena", "reddit"})

	if report.Summary.Total != 1 {
		t.Fatalf("Summary.Total = %d, want 1", report.Summary.Total)
	}
	// 先勝ち
	if report.Articles[0].Title != "first" {
		t.Errorf("kept article = %q, want first", report.Articles[0].Title)
	}
}

func TestBuildReport_EmptyInput(t *testing.T) {
	report := BuildReport("2026-02-01", time.Now(), nil, nil)

	if err := report.Validate(); err != nil {
		t.Fatalf("empty report should still pass validation: %v", err)
	}
	if report.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", report.Summary.Total)
	}
}
