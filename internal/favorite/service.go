// Package favorite はDeepDive記事のお気に入り管理を提供する。
package favorite

import (
	"context"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// Store はお気に入りサービスが必要とする永続化インターフェース。
// storage.FileStoreの部分集合として定義する。
type Store interface {
	// ReadFavorites はお気に入りリストを返す。リソース不在時は空リストを返す。
	ReadFavorites() ([]model.FavoriteArticle, error)
	// MutateFavorites はリストのread-modify-writeを1つの論理単位として実行する。
	// fnがnilリストを返した場合は書き込みを行わない。
	MutateFavorites(fn func(favorites []model.FavoriteArticle) ([]model.FavoriteArticle, error)) error
}

// Service はお気に入りの登録・解除・一覧のサービス。
type Service struct {
	store Store
	now   func() time.Time // テストで差し替え可能
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// List はお気に入り一覧を返す。
func (s *Service) List(ctx context.Context) ([]model.FavoriteArticle, error) {
	return s.store.ReadFavorites()
}

// Add はお気に入りを登録する。articleIDとtitleは必須。
// 既に同じarticleIDが登録済みの場合は重複を作らず、既存エントリの
// addedAtも変更せずに成功として報告する（冪等）。
// 戻り値のalreadyは既に登録済みだったかどうかを示す。
func (s *Service) Add(ctx context.Context, articleID, date, title string) (already bool, err error) {
	if articleID == "" || title == "" {
		return false, model.NewInvalidRequestError("articleIdとtitleは必須です")
	}

	err = s.store.MutateFavorites(func(favorites []model.FavoriteArticle) ([]model.FavoriteArticle, error) {
		for _, f := range favorites {
			if f.ArticleID == articleID {
				already = true
				return nil, nil // 書き込みせず成功
			}
		}
		return append(favorites, model.FavoriteArticle{
			ArticleID: articleID,
			Date:      date,
			Title:     title,
			AddedAt:   s.now().UTC().Format(time.RFC3339),
		}), nil
	})
	if err != nil {
		return false, err
	}
	return already, nil
}

// Remove は指定articleIDのお気に入りを解除する。
// 該当エントリが存在しない場合はFAVORITE_NOT_FOUNDエラーを返す。
func (s *Service) Remove(ctx context.Context, articleID string) error {
	return s.store.MutateFavorites(func(favorites []model.FavoriteArticle) ([]model.FavoriteArticle, error) {
		filtered := make([]model.FavoriteArticle, 0, len(favorites))
		for _, f := range favorites {
			if f.ArticleID != articleID {
				filtered = append(filtered, f)
			}
		}
		if len(filtered) == len(favorites) {
			return nil, model.NewFavoriteNotFoundError(articleID)
		}
		return filtered, nil
	})
}
