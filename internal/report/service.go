// Package report はヘッドラインレポートの取得とチェック状態の更新を提供する。
package report

import (
	"context"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// Store はレポートサービスが必要とする永続化インターフェース。
// storage.FileStoreの部分集合として定義する。
type Store interface {
	// ListReportDates は利用可能なレポート日付の一覧を新しい順で返す。
	ListReportDates() ([]model.ReportDateEntry, error)
	// ReadReport は指定日のレポートを返す。存在しない場合はnilを返す。
	ReadReport(date string) (*model.HeadlineReport, error)
	// MutateReport はレポートのread-modify-writeを1つの論理単位として実行する。
	MutateReport(date string, fn func(report *model.HeadlineReport) error) error
}

// TextSanitizer はレポートのテキストフィールドをサニタイズするインターフェース。
type TextSanitizer interface {
	Sanitize(raw string) string
}

// Service はレポートの閲覧とチェック状態更新のサービス。
// レポートファイルが唯一の信頼点であり、取得のたびにディスクから読み直す。
type Service struct {
	store     Store
	sanitizer TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store Store, sanitizer TextSanitizer) *Service {
	return &Service{
		store:     store,
		sanitizer: sanitizer,
	}
}

// ListDates は利用可能なレポート日付の一覧を件数サマリー付きで返す。
func (s *Service) ListDates(ctx context.Context) ([]model.ReportDateEntry, error) {
	return s.store.ListReportDates()
}

// Get は指定日のレポートを返す。
// 存在しない場合はREPORT_NOT_FOUNDエラーを返す。
// 返却前にタイトル・概要文等のテキストフィールドをサニタイズする。
// レポートファイルは手編集されるため、紛れ込んだHTMLを表示側へ渡さない。
// サニタイズは返却用コピーに対して行い、ファイル内容には反映しない。
func (s *Service) Get(ctx context.Context, date string) (*model.HeadlineReport, error) {
	report, err := s.store.ReadReport(date)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, model.NewReportNotFoundError(date)
	}

	cleaned := report.Clone()
	for i := range cleaned.Articles {
		a := &cleaned.Articles[i]
		a.Title = s.sanitizer.Sanitize(a.Title)
		a.TitleJa = s.sanitizer.Sanitize(a.TitleJa)
		a.Summary = s.sanitizer.Sanitize(a.Summary)
	}
	for i := range cleaned.TrendAnalysis {
		t := &cleaned.TrendAnalysis[i]
		t.Topic = s.sanitizer.Sanitize(t.Topic)
		t.Description = s.sanitizer.Sanitize(t.Description)
	}
	return cleaned, nil
}

// CheckResult はチェック状態更新の結果を表す。
type CheckResult struct {
	ArticleID string
	Checked   bool
}

// SetArticleChecked は記事のチェック状態を更新しファイルへ書き戻す。
// read-modify-writeはストアのキー単位ロックで直列化され、checked以外の
// フィールドは変更しない。レポート不在と記事不在は区別して報告する。
func (s *Service) SetArticleChecked(ctx context.Context, date, articleID string, checked bool) (*CheckResult, error) {
	err := s.store.MutateReport(date, func(report *model.HeadlineReport) error {
		if report == nil {
			return model.NewReportNotFoundError(date)
		}
		article := report.FindArticle(articleID)
		if article == nil {
			return model.NewArticleNotFoundError(articleID)
		}
		article.Checked = checked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CheckResult{ArticleID: articleID, Checked: checked}, nil
}
