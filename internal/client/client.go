// Package client はトレンドビューAPIのクライアントと楽観的更新ストアを提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// ResponseError はAPIがエラーレスポンスを返した場合のエラー。
// サーバー側の統一エラーフォーマットを保持する。
type ResponseError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ResponseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("APIエラー %d [%s] %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("APIエラー %d", e.StatusCode)
}

// Client はトレンドビューAPIのHTTPクライアント。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLはAPIルート（例: "http://localhost:8080"）を指定する。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

type reportDatesResponse struct {
	Dates []model.ReportDateEntry `json:"dates"`
}

type setCheckedRequest struct {
	Checked bool `json:"checked"`
}

// SetCheckedResult は記事チェック状態更新の結果。
type SetCheckedResult struct {
	Success   bool   `json:"success"`
	ArticleID string `json:"articleId"`
	Checked   bool   `json:"checked"`
}

type deepDiveListResponse struct {
	Files []model.DeepDiveEntry `json:"files"`
}

// DeepDiveDocument はDeepDiveドキュメントの本文。
type DeepDiveDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type favoriteListResponse struct {
	Favorites []model.FavoriteArticle `json:"favorites"`
}

type addFavoriteRequest struct {
	ArticleID string `json:"articleId"`
	Date      string `json:"date"`
	Title     string `json:"title"`
}

// MutationResult は変更系エンドポイントの結果。
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListReportDates はレポート日付一覧を取得する。
func (c *Client) ListReportDates(ctx context.Context) ([]model.ReportDateEntry, error) {
	var resp reportDatesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/dates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dates, nil
}

// GetReport は指定日のレポートを取得する。
func (c *Client) GetReport(ctx context.Context, date string) (*model.HeadlineReport, error) {
	var report model.HeadlineReport
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/"+url.PathEscape(date), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SetArticleChecked は記事のチェック状態を更新する。
func (c *Client) SetArticleChecked(ctx context.Context, date, articleID string, checked bool) (*SetCheckedResult, error) {
	path := fmt.Sprintf("/api/reports/%s/articles/%s", url.PathEscape(date), url.PathEscape(articleID))
	var result SetCheckedResult
	if err := c.doJSON(ctx, http.MethodPatch, path, setCheckedRequest{Checked: checked}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDeepDives はDeepDiveドキュメント一覧を取得する。
func (c *Client) ListDeepDives(ctx context.Context) ([]model.DeepDiveEntry, error) {
	var resp deepDiveListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/deepdives", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// GetDeepDive は指定のDeepDiveドキュメント本文を取得する。
func (c *Client) GetDeepDive(ctx context.Context, month, filename string) (*DeepDiveDocument, error) {
	path := fmt.Sprintf("/api/deepdives/%s/%s", url.PathEscape(month), url.PathEscape(filename))
	var doc DeepDiveDocument
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListFavorites はお気に入り一覧を取得する。
func (c *Client) ListFavorites(ctx context.Context) ([]model.FavoriteArticle, error) {
	var resp favoriteListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/favorites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite はお気に入りを登録する。
func (c *Client) AddFavorite(ctx context.Context, articleID, date, title string) (*MutationResult, error) {
	var result MutationResult
	body := addFavoriteRequest{ArticleID: articleID, Date: date, Title: title}
	if err := c.doJSON(ctx, http.MethodPost, "/api/favorites", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveFavorite はお気に入りを解除する。
// articleIDにはスラッシュを含むDeepDiveパスが入るためURLエンコードして送信する。
func (c *Client) RemoveFavorite(ctx context.Context, articleID string) (*MutationResult, error) {
	var result MutationResult
	path := "/api/favorites/" + url.PathEscape(articleID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doJSON はリクエストを送信し、成功時はoutへ、失敗時はResponseErrorとしてデコードする。
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return nil
}

// decodeError は統一エラーフォーマットのボディをResponseErrorに変換する。
// ボディがデコードできない場合もステータスコードだけは保持する。
func (c *Client) decodeError(statusCode int, body []byte) error {
	respErr := &ResponseError{StatusCode: statusCode}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		respErr.Code = apiErr.Code
		respErr.Message = apiErr.Message
	}

	if c.logger != nil {
		c.logger.Warn("APIがエラーレスポンスを返しました",
			slog.Int("http_status", statusCode),
			slog.String("code", respErr.Code),
		)
	}
	return respErr
}
