// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/silmo-yokohama/trendview/internal/model"
	"github.com/silmo-yokohama/trendview/internal/report"
)

// ReportServiceInterface はレポートハンドラーが必要とするサービスインターフェース。
type ReportServiceInterface interface {
	// ListDates は利用可能なレポート日付の一覧を新しい順で返す。
	ListDates(ctx context.Context) ([]model.ReportDateEntry, error)
	// Get は指定日のレポートを返す。
	Get(ctx context.Context, date string) (*model.HeadlineReport, error)
	// SetArticleChecked は記事のチェック状態を更新する。
	SetArticleChecked(ctx context.Context, date, articleID string, checked bool) (*report.CheckResult, error)
}

// ReportHandler はレポート閲覧・チェック状態更新のHTTPハンドラー。
type ReportHandler struct {
	service ReportServiceInterface
}

// NewReportHandler はReportHandlerを生成する。
func NewReportHandler(service ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// --- リクエスト/レスポンス型 ---

// dateListResponse はレポート日付一覧のレスポンス。
type dateListResponse struct {
	Dates []model.ReportDateEntry `json:"dates"`
}

// setCheckedRequest はチェック状態更新リクエストのボディ。
// checkedはboolean型であることを必須とするためポインタで受ける。
type setCheckedRequest struct {
	Checked *bool `json:"checked"`
}

// setCheckedResponse はチェック状態更新のレスポンス。
type setCheckedResponse struct {
	Success   bool   `json:"success"`
	ArticleID string `json:"articleId"`
	Checked   bool   `json:"checked"`
}

// ListDates はレポート日付一覧を取得する。
// GET /api/reports/dates
// ディレクトリ不在時はサービス側で空一覧に縮退する（初回起動対応）。
// それ以外の読み込み失敗は500を返す。
func (h *ReportHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.ListDates(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dateListResponse{Dates: dates})
}

// GetReport は指定日のレポート全体を取得する。
// GET /api/reports/{date}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	rep, err := h.service.Get(r.Context(), date)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// SetArticleChecked は記事のチェック状態を更新しファイルへ書き戻す。
// PATCH /api/reports/{date}/articles/{id}
func (h *ReportHandler) SetArticleChecked(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	articleID := chi.URLParam(r, "id")

	var req setCheckedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.Checked == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("checkedはboolean型である必要があります"))
		return
	}

	result, err := h.service.SetArticleChecked(r.Context(), date, articleID, *req.Checked)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, setCheckedResponse{
		Success:   true,
		ArticleID: result.ArticleID,
		Checked:   result.Checked,
	})
}

// --- ヘルパー関数 ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeReportNotFound,
		model.ErrCodeArticleNotFound,
		model.ErrCodeDeepDiveNotFound,
		model.ErrCodeFavoriteNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidPath:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
