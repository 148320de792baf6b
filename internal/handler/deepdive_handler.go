package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/silmo-yokohama/trendview/internal/deepdive"
	"github.com/silmo-yokohama/trendview/internal/model"
)

// DeepDiveServiceInterface はDeepDiveハンドラーが必要とするサービスインターフェース。
type DeepDiveServiceInterface interface {
	// List はDeepDiveファイル一覧を新しい順で返す。
	List(ctx context.Context) ([]model.DeepDiveEntry, error)
	// GetContent は指定ファイルのMarkdown本文を返す。
	GetContent(ctx context.Context, month, filename string) (*deepdive.Content, error)
}

// DeepDiveHandler はDeepDiveドキュメント閲覧のHTTPハンドラー。
type DeepDiveHandler struct {
	service DeepDiveServiceInterface
}

// NewDeepDiveHandler はDeepDiveHandlerを生成する。
func NewDeepDiveHandler(service DeepDiveServiceInterface) *DeepDiveHandler {
	return &DeepDiveHandler{service: service}
}

// deepDiveListResponse はDeepDive一覧のレスポンス。
type deepDiveListResponse struct {
	Files []model.DeepDiveEntry `json:"files"`
}

// deepDiveContentResponse はDeepDive本文のレスポンス。
type deepDiveContentResponse struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ListDeepDives はDeepDiveファイル一覧を取得する。
// GET /api/deepdives
func (h *DeepDiveHandler) ListDeepDives(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deepDiveListResponse{Files: files})
}

// GetDeepDive は指定ファイルのMarkdown本文を取得する。
// GET /api/deepdives/{month}/{filename}
func (h *DeepDiveHandler) GetDeepDive(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	filename := chi.URLParam(r, "filename")

	content, err := h.service.GetContent(r.Context(), month, filename)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deepDiveContentResponse{
		Filename: content.Filename,
		Content:  content.Body,
	})
}
