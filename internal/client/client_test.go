package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.Client(), server.URL, discardLogger())
}

func TestClient_ListReportDates(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/reports/dates" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"dates":[{"date":"2026-02-02"},{"date":"2026-02-01"}]}`)
	})

	dates, err := c.ListReportDates(context.Background())
	if err != nil {
		t.Fatalf("ListReportDates failed: %v", err)
	}
	if len(dates) != 2 || dates[0].Date != "2026-02-02" {
		t.Errorf("dates = %+v", dates)
	}
}

func TestClient_GetReport(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reports/2026-02-01" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"date":"2026-02-01","articles":[{"id":"abc12345","title":"A"}],"summary":{"total":1,"byCategory":{"AI":1}}}`)
	})

	report, err := c.GetReport(context.Background(), "2026-02-01")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if report.Date != "2026-02-01" || len(report.Articles) != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestClient_GetReport_NotFound(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":"REPORT_NOT_FOUND","message":"見つかりません","category":"report","action":"日付を確認してください。"}`)
	})

	_, err := c.GetReport(context.Background(), "2026-01-01")
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("error should be *ResponseError, got %T", err)
	}
	if respErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", respErr.StatusCode)
	}
	if respErr.Code != "REPORT_NOT_FOUND" {
		t.Errorf("Code = %q, want REPORT_NOT_FOUND", respErr.Code)
	}
}

func TestClient_SetArticleChecked(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/api/reports/2026-02-01/articles/abc12345" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Checked bool `json:"checked"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body decode failed: %v", err)
		}
		if !body.Checked {
			t.Error("checked should be true")
		}
		fmt.Fprint(w, `{"success":true,"articleId":"abc12345","checked":true}`)
	})

	result, err := c.SetArticleChecked(context.Background(), "2026-02-01", "abc12345", true)
	if err != nil {
		t.Fatalf("SetArticleChecked failed: %v", err)
	}
	if !result.Success || result.ArticleID != "abc12345" || !result.Checked {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_GetDeepDive(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/deepdives/2026-02/2026-02-01_llm-agents.md" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"filename":"2026-02-01_llm-agents.md","content":"# LLM"}`)
	})

	doc, err := c.GetDeepDive(context.Background(), "2026-02", "2026-02-01_llm-agents.md")
	if err != nil {
		t.Fatalf("GetDeepDive failed: %v", err)
	}
	if doc.Content != "# LLM" {
		t.Errorf("Content = %q", doc.Content)
	}
}

func TestClient_AddFavorite(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/favorites" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			ArticleID string `json:"articleId"`
			Date      string `json:"date"`
			Title     string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body decode failed: %v", err)
		}
		if body.ArticleID != "2026-02/a.md" || body.Title != "タイトル" {
			t.Errorf("body = %+v", body)
		}
		fmt.Fprint(w, `{"success":true}`)
	})

	result, err := c.AddFavorite(context.Background(), "2026-02/a.md", "2026-02-01", "タイトル")
	if err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if !result.Success {
		t.Error("Success should be true")
	}
}

func TestClient_RemoveFavorite_EncodesSlash(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		// スラッシュを含むIDはエンコードされたまま届く
		if got := r.URL.EscapedPath(); got != "/api/favorites/2026-02%2F2026-02-01_llm-agents.md" {
			t.Errorf("escaped path = %q", got)
		}
		fmt.Fprint(w, `{"success":true}`)
	})

	if _, err := c.RemoveFavorite(context.Background(), "2026-02/2026-02-01_llm-agents.md"); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
}

func TestClient_DecodeError_NonJSONBody(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream down")
	})

	_, err := c.ListReportDates(context.Background())
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("error should be *ResponseError, got %T", err)
	}
	if respErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", respErr.StatusCode)
	}
	if respErr.Code != "" {
		t.Errorf("Code = %q, want empty", respErr.Code)
	}
}
