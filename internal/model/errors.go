package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, report, deepdive, favorite, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeReportNotFound   = "REPORT_NOT_FOUND"
	ErrCodeArticleNotFound  = "ARTICLE_NOT_FOUND"
	ErrCodeDeepDiveNotFound = "DEEPDIVE_NOT_FOUND"
	ErrCodeFavoriteNotFound = "FAVORITE_NOT_FOUND"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidReport    = "INVALID_REPORT"
	ErrCodeInvalidPath      = "INVALID_PATH"
)

// NewReportNotFoundError は指定日のレポートが存在しない場合のエラーを生成する。
func NewReportNotFoundError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeReportNotFound,
		Message:  fmt.Sprintf("指定日のレポートが見つかりません: %s", date),
		Category: "report",
		Action:   "日付を確認するか、レポート一覧から選択し直してください。",
	}
}

// NewArticleNotFoundError はレポート内に記事が存在しない場合のエラーを生成する。
// レポート自体の不在とは区別して報告する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", articleID),
		Category: "report",
		Action:   "記事IDを確認してください。",
	}
}

// NewDeepDiveNotFoundError はDeepDiveファイルが存在しない場合のエラーを生成する。
func NewDeepDiveNotFoundError(path string) *APIError {
	return &APIError{
		Code:     ErrCodeDeepDiveNotFound,
		Message:  fmt.Sprintf("指定のDeepDiveファイルが見つかりません: %s", path),
		Category: "deepdive",
		Action:   "DeepDive一覧から選択し直してください。",
	}
}

// NewFavoriteNotFoundError はお気に入りが存在しない場合のエラーを生成する。
func NewFavoriteNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  fmt.Sprintf("お気に入りが見つかりません: %s", articleID),
		Category: "favorite",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewInvalidRequestError はリクエストが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidReportError は永続化されたレポートがスキーマ検証に失敗した場合のエラーを生成する。
// 不正なドキュメントをUI層へ伝播させないための防波堤として使用する。
func NewInvalidReportError(date string, reason error) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReport,
		Message:  fmt.Sprintf("レポートの形式が不正です（%s）: %v", date, reason),
		Category: "system",
		Action:   "レポートファイルの内容を確認してください。",
	}
}

// NewInvalidPathError はパスセグメントが不正な場合のエラーを生成する。
func NewInvalidPathError(segment string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPath,
		Message:  fmt.Sprintf("不正なパス指定です: %s", segment),
		Category: "validation",
		Action:   "パスにディレクトリ区切りや相対参照は使用できません。",
	}
}
