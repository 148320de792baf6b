package client

import (
	"context"
	"fmt"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// State は楽観的更新ストアの状態。
type State int

const (
	// StateIdle は未取得の初期状態。
	StateIdle State = iota
	// StateLoading は取得中。
	StateLoading
	// StateReady は値を保持して操作可能な状態。変更後も常にこの状態に戻る。
	StateReady
	// StateFailed は取得に失敗した状態。再度Loadでやり直せる。
	StateFailed
)

// String はstringerを実装する。
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ReportStore は1日分のレポートを保持する楽観的更新ストア。
//
// 変更操作はまずローカルコピーへ同期的に適用し、その後APIを呼び出す。
// API呼び出しが失敗した場合は変更前に取得したスナップショットへ完全に
// 巻き戻す。観測可能な終端状態は常にReadyであり、中途半端な値は残らない。
//
// 呼び出し側は単一の論理ゴルーチンから操作する前提で、内部ロックは持たない。
// 同一記事への変更を前の呼び出しの完了前に重ねた場合の結果は保証しない。
type ReportStore struct {
	client *Client
	date   string

	state   State
	report  *model.HeadlineReport
	lastErr error
}

// NewReportStore は指定日のレポートを扱うReportStoreを生成する。
func NewReportStore(c *Client, date string) *ReportStore {
	return &ReportStore{
		client: c,
		date:   date,
		state:  StateIdle,
	}
}

// Date は対象日を返す。
func (s *ReportStore) Date() string { return s.date }

// State は現在の状態を返す。
func (s *ReportStore) State() State { return s.state }

// Report は保持中のレポートを返す。Ready以外ではnil。
func (s *ReportStore) Report() *model.HeadlineReport { return s.report }

// Err は直近のLoad失敗の原因を返す。
func (s *ReportStore) Err() error { return s.lastErr }

// Load はレポートを取得してReadyに遷移する。失敗時はFailedに遷移する。
// Failedからの再実行で取り直しができる。
func (s *ReportStore) Load(ctx context.Context) error {
	s.state = StateLoading
	s.report = nil
	s.lastErr = nil

	report, err := s.client.GetReport(ctx, s.date)
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		return err
	}

	s.state = StateReady
	s.report = report
	return nil
}

// SetArticleChecked は記事のチェック状態を楽観的に更新する。
// ローカルコピーへ先に反映してからAPIを呼び出し、失敗時はスナップショットへ巻き戻す。
func (s *ReportStore) SetArticleChecked(ctx context.Context, articleID string, checked bool) error {
	if s.state != StateReady {
		return fmt.Errorf("レポートが未取得です（状態: %s）", s.state)
	}

	snapshot := s.report.Clone()

	for i := range s.report.Articles {
		if s.report.Articles[i].ID == articleID {
			s.report.Articles[i].Checked = checked
			break
		}
	}

	if _, err := s.client.SetArticleChecked(ctx, s.date, articleID, checked); err != nil {
		s.report = snapshot
		return err
	}
	return nil
}

// FavoritesStore はお気に入り一覧を保持する楽観的更新ストア。
// 巻き戻しの規則はReportStoreと同じ。内部ロックは持たない。
type FavoritesStore struct {
	client *Client

	state     State
	favorites []model.FavoriteArticle
	lastErr   error

	now func() time.Time // テストで差し替え可能
}

// NewFavoritesStore はFavoritesStoreを生成する。
func NewFavoritesStore(c *Client) *FavoritesStore {
	return &FavoritesStore{
		client: c,
		state:  StateIdle,
		now:    time.Now,
	}
}

// State は現在の状態を返す。
func (s *FavoritesStore) State() State { return s.state }

// Favorites は保持中のお気に入り一覧を返す。Ready以外ではnil。
func (s *FavoritesStore) Favorites() []model.FavoriteArticle { return s.favorites }

// Err は直近のLoad失敗の原因を返す。
func (s *FavoritesStore) Err() error { return s.lastErr }

// Load はお気に入り一覧を取得してReadyに遷移する。失敗時はFailedに遷移する。
func (s *FavoritesStore) Load(ctx context.Context) error {
	s.state = StateLoading
	s.favorites = nil
	s.lastErr = nil

	favorites, err := s.client.ListFavorites(ctx)
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		return err
	}

	s.state = StateReady
	if favorites == nil {
		favorites = []model.FavoriteArticle{}
	}
	s.favorites = favorites
	return nil
}

// Add はお気に入りを楽観的に追加する。
// 既にローカルに存在する場合はローカルへの追加は行わず、API呼び出しのみ行う
// （サーバー側の冪等な応答と整合する）。失敗時はスナップショットへ巻き戻す。
func (s *FavoritesStore) Add(ctx context.Context, articleID, date, title string) error {
	if s.state != StateReady {
		return fmt.Errorf("お気に入りが未取得です（状態: %s）", s.state)
	}

	snapshot := cloneFavorites(s.favorites)

	if !s.contains(articleID) {
		s.favorites = append(s.favorites, model.FavoriteArticle{
			ArticleID: articleID,
			Date:      date,
			Title:     title,
			AddedAt:   s.now().Format(time.RFC3339),
		})
	}

	if _, err := s.client.AddFavorite(ctx, articleID, date, title); err != nil {
		s.favorites = snapshot
		return err
	}
	return nil
}

// Remove はお気に入りを楽観的に削除する。失敗時はスナップショットへ巻き戻す。
func (s *FavoritesStore) Remove(ctx context.Context, articleID string) error {
	if s.state != StateReady {
		return fmt.Errorf("お気に入りが未取得です（状態: %s）", s.state)
	}

	snapshot := cloneFavorites(s.favorites)

	kept := make([]model.FavoriteArticle, 0, len(s.favorites))
	for _, f := range s.favorites {
		if f.ArticleID != articleID {
			kept = append(kept, f)
		}
	}
	s.favorites = kept

	if _, err := s.client.RemoveFavorite(ctx, articleID); err != nil {
		s.favorites = snapshot
		return err
	}
	return nil
}

func (s *FavoritesStore) contains(articleID string) bool {
	for _, f := range s.favorites {
		if f.ArticleID == articleID {
			return true
		}
	}
	return false
}

func cloneFavorites(favorites []model.FavoriteArticle) []model.FavoriteArticle {
	return append([]model.FavoriteArticle(nil), favorites...)
}
