package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	// List はお気に入り一覧を返す。
	List(ctx context.Context) ([]model.FavoriteArticle, error)
	// Add はお気に入りを冪等に登録する。登録済みの場合はalreadyがtrueとなる。
	Add(ctx context.Context, articleID, date, title string) (already bool, err error)
	// Remove は指定articleIDのお気に入りを解除する。
	Remove(ctx context.Context, articleID string) error
}

// FavoriteHandler はお気に入り管理のHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// favoriteListResponse はお気に入り一覧のレスポンス。
type favoriteListResponse struct {
	Favorites []model.FavoriteArticle `json:"favorites"`
}

// addFavoriteRequest はお気に入り登録リクエストのボディ。
type addFavoriteRequest struct {
	ArticleID string `json:"articleId"`
	Date      string `json:"date"`
	Title     string `json:"title"`
}

// successResponse は登録・解除の成功レスポンス。
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListFavorites はお気に入り一覧を取得する。
// GET /api/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteListResponse{Favorites: favorites})
}

// AddFavorite はお気に入りを登録する。
// POST /api/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	already, err := h.service.Add(r.Context(), req.ArticleID, req.Date, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := successResponse{Success: true}
	if already {
		resp.Message = "既に登録済みです"
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveFavorite はお気に入りを解除する。
// DELETE /api/favorites/*
// articleIDは"<月>/<ファイル名>"形式のパスで、URLエンコードされて渡される。
// スラッシュを含むためワイルドカードで受け、デコードしてから処理する。
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	articleID, err := url.PathUnescape(raw)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("articleIdのデコードに失敗しました"))
		return
	}
	if articleID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("articleIdは必須です"))
		return
	}

	if err := h.service.Remove(r.Context(), articleID); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
