package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// newTestReport はテスト用のレポートを生成するヘルパー。
func newTestReport(date string) *model.HeadlineReport {
	by := model.NewCategoryCounts()
	by.Set("AI/LLM", 2)
	by.Set("スポーツ", 1)
	return &model.HeadlineReport{
		Date:        date,
		GeneratedAt: date + "T07:00:00",
		DataSources: []string{"はてなブックマーク", "Reddit"},
		Summary:     model.Summary{Total: 3, ByCategory: by},
		Articles: []model.Article{
			{ID: "id-aaa", Title: "記事A", URL: "https://example.com/a", Category: "AI/LLM", Source: model.SourceHatena, Score: 210, ScoreLabel: "210 users", Summary: "概要A"},
			{ID: "id-bbb", Title: "記事B", URL: "https://example.com/b", Category: "AI/LLM", Source: model.SourceReddit, Score: 90, ScoreLabel: "90pt", Subreddit: "LocalLLaMA", Summary: "概要B"},
			{ID: "id-ccc", Title: "記事C", URL: "https://example.com/c", Category: "スポーツ", Source: model.SourceYahoo, Score: 0, ScoreLabel: "スポーツ報知", Summary: "概要C"},
		},
	}
}

func TestFileStore_ReadReport_NotFound(t *testing.T) {
	s := NewFileStore(t.TempDir())

	report, err := s.ReadReport("2026-02-11")
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}
	if report != nil {
		t.Errorf("ReadReport() = %+v, want nil", report)
	}
}

func TestFileStore_WriteAndReadReport_RoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())
	want := newTestReport("2026-02-11")

	if err := s.WriteReport("2026-02-11", want); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	got, err := s.ReadReport("2026-02-11")
	if err != nil {
		t.Fatalf("ReadReport() error = %v", err)
	}
	if got == nil {
		t.Fatal("ReadReport() = nil, want report")
	}
	if got.Date != want.Date || len(got.Articles) != 3 {
		t.Errorf("ReadReport() = %+v, want %+v", got, want)
	}
	if got.Articles[1].Subreddit != "LocalLLaMA" {
		t.Errorf("Subreddit = %q, want LocalLLaMA", got.Articles[1].Subreddit)
	}
	if keys := got.Summary.ByCategory.Keys(); keys[0] != "AI/LLM" || keys[1] != "スポーツ" {
		t.Errorf("byCategory key order = %v", keys)
	}
}

func TestFileStore_WriteReport_IndentedAndMonthDir(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	if err := s.WriteReport("2026-02-11", newTestReport("2026-02-11")); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	// 月ディレクトリ配下に格納される
	path := filepath.Join(root, "Headlines", "2026-02", "2026-02-11.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not found at %s: %v", path, err)
	}

	// 手編集・差分確認できる整形済みJSONであること
	if !strings.Contains(string(data), "\n  \"articles\": [") {
		t.Error("report file is not indented")
	}
	// byCategoryのキー順がファイル上でも保持されること
	aiIdx := strings.Index(string(data), `"AI/LLM"`)
	spIdx := strings.Index(string(data), `"スポーツ"`)
	if aiIdx < 0 || spIdx < 0 || aiIdx > spIdx {
		t.Error("byCategory key order not preserved in file")
	}
}

func TestFileStore_ReadReport_MalformedJSON(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	dir := filepath.Join(root, "Headlines", "2026-02")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2026-02-11.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReadReport("2026-02-11")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidReport {
		t.Errorf("ReadReport() error = %v, want INVALID_REPORT", err)
	}
}

func TestFileStore_ReadReport_SchemaViolation(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	report := newTestReport("2026-02-11")
	report.Summary.Total = 99
	data, _ := json.Marshal(report)

	dir := filepath.Join(root, "Headlines", "2026-02")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2026-02-11.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.ReadReport("2026-02-11")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidReport {
		t.Errorf("ReadReport() error = %v, want INVALID_REPORT", err)
	}
}

func TestFileStore_MutateReport_TogglesOnlyCheckedField(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if err := s.WriteReport("2026-02-11", newTestReport("2026-02-11")); err != nil {
		t.Fatal(err)
	}

	err := s.MutateReport("2026-02-11", func(r *model.HeadlineReport) error {
		r.FindArticle("id-bbb").Checked = true
		return nil
	})
	if err != nil {
		t.Fatalf("MutateReport() error = %v", err)
	}

	got, err := s.ReadReport("2026-02-11")
	if err != nil {
		t.Fatal(err)
	}
	if !got.FindArticle("id-bbb").Checked {
		t.Error("id-bbb checked = false, want true")
	}
	// 他の記事・他のフィールドは不変
	a := got.FindArticle("id-aaa")
	if a.Checked || a.Title != "記事A" || a.Score != 210 {
		t.Errorf("id-aaa mutated: %+v", a)
	}
	if got.GeneratedAt != "2026-02-11T07:00:00" {
		t.Errorf("generatedAt mutated: %s", got.GeneratedAt)
	}
}

func TestFileStore_MutateReport_FnErrorSkipsWrite(t *testing.T) {
	s := NewFileStore(t.TempDir())
	if err := s.WriteReport("2026-02-11", newTestReport("2026-02-11")); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("mutation rejected")
	err := s.MutateReport("2026-02-11", func(r *model.HeadlineReport) error {
		r.FindArticle("id-aaa").Checked = true
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("MutateReport() error = %v, want %v", err, wantErr)
	}

	got, _ := s.ReadReport("2026-02-11")
	if got.FindArticle("id-aaa").Checked {
		t.Error("write happened despite fn error")
	}
}

func TestFileStore_MutateReport_InvalidDate(t *testing.T) {
	s := NewFileStore(t.TempDir())

	wantErr := errors.New("report missing")
	var got *model.HeadlineReport = newTestReport("2026-02-11")
	err := s.MutateReport("ab", func(r *model.HeadlineReport) error {
		got = r
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("MutateReport() error = %v, want %v", err, wantErr)
	}
	if got != nil {
		t.Error("fn received a non-nil report for an invalid date")
	}
}

func TestFileStore_WriteReport_InvalidDate(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	err := s.WriteReport("ab", newTestReport("2026-02-11"))
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidReport {
		t.Fatalf("WriteReport() error = %v, want INVALID_REPORT", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected files written: %v", entries)
	}
}

func TestFileStore_ReadFavorites_EmptyWhenMissing(t *testing.T) {
	s := NewFileStore(t.TempDir())

	favorites, err := s.ReadFavorites()
	if err != nil {
		t.Fatalf("ReadFavorites() error = %v", err)
	}
	if favorites == nil || len(favorites) != 0 {
		t.Errorf("ReadFavorites() = %v, want empty slice", favorites)
	}
}

func TestFileStore_MutateFavorites_Serialized(t *testing.T) {
	s := NewFileStore(t.TempDir())

	// 並行追加が直列化され、更新が失われないこと
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.MutateFavorites(func(favorites []model.FavoriteArticle) ([]model.FavoriteArticle, error) {
				return append(favorites, model.FavoriteArticle{
					ArticleID: string(rune('a' + i)),
					Date:      "2026-02-11",
					Title:     "タイトル",
					AddedAt:   "2026-02-11T00:00:00Z",
				}), nil
			})
			if err != nil {
				t.Errorf("MutateFavorites() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	favorites, err := s.ReadFavorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favorites) != n {
		t.Errorf("favorites length = %d, want %d (lost update)", len(favorites), n)
	}
}

func TestFileStore_ReadDeepDive(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	dir := filepath.Join(root, "DeepDives", "2026-02")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	const content = "# ESLint v10.0.0\n\n本文。\n"
	if err := os.WriteFile(filepath.Join(dir, "2026-02-09_ESLint v10.0.0 released.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, found, err := s.ReadDeepDive("2026-02", "2026-02-09_ESLint v10.0.0 released.md")
	if err != nil {
		t.Fatalf("ReadDeepDive() error = %v", err)
	}
	if !found || got != content {
		t.Errorf("ReadDeepDive() = %q, %v, want %q, true", got, found, content)
	}

	_, found, err = s.ReadDeepDive("2026-02", "nope.md")
	if err != nil || found {
		t.Errorf("ReadDeepDive(missing) found = %v, err = %v, want false, nil", found, err)
	}
}
