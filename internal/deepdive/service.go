// Package deepdive はDeepDive Markdownドキュメントの一覧と本文取得を提供する。
package deepdive

import (
	"context"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// Store はDeepDiveサービスが必要とする永続化インターフェース。
// storage.FileStoreの部分集合として定義する。
type Store interface {
	// ListDeepDives はDeepDiveファイル一覧を新しい順で返す。
	ListDeepDives() ([]model.DeepDiveEntry, error)
	// ReadDeepDive は指定パスのMarkdown本文を返す。不在時はfoundがfalseとなる。
	ReadDeepDive(month, filename string) (content string, found bool, err error)
}

// PathValidator はパスセグメントの検証インターフェース。
// security.PathGuardの部分集合として定義する。
type PathValidator interface {
	ValidateSegment(segment string) bool
}

// Service はDeepDiveドキュメントの閲覧サービス。
// monthとfilenameはURLから渡されるため、ストレージ到達前に
// トラバーサル検証を行う。
type Service struct {
	store Store
	guard PathValidator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store Store, guard PathValidator) *Service {
	return &Service{
		store: store,
		guard: guard,
	}
}

// List はDeepDiveファイルの一覧を返す。
func (s *Service) List(ctx context.Context) ([]model.DeepDiveEntry, error) {
	return s.store.ListDeepDives()
}

// Content はDeepDiveの1エントリの本文を表す。
type Content struct {
	Filename string
	Body     string
}

// GetContent は指定ファイルのMarkdown本文を返す。
// パスセグメントが不正な場合はINVALID_PATH、ファイル不在時は
// DEEPDIVE_NOT_FOUNDエラーを返す。
func (s *Service) GetContent(ctx context.Context, month, filename string) (*Content, error) {
	if !s.guard.ValidateSegment(month) {
		return nil, model.NewInvalidPathError(month)
	}
	if !s.guard.ValidateSegment(filename) {
		return nil, model.NewInvalidPathError(filename)
	}

	body, found, err := s.store.ReadDeepDive(month, filename)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.NewDeepDiveNotFoundError(month + "/" + filename)
	}
	return &Content{Filename: filename, Body: body}, nil
}
