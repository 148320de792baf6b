package security

import (
	"strings"
)

// PathGuard はユーザー入力のパスセグメントを検証する。
// DeepDiveファイルやお気に入りのArticleIDはURLから渡される相対パスのため、
// ディレクトリトラバーサルでデータディレクトリ外のファイルへ
// 到達できないことをストレージ到達前に保証する。
type PathGuard struct{}

// NewPathGuard はPathGuardの新しいインスタンスを生成する。
func NewPathGuard() *PathGuard {
	return &PathGuard{}
}

// ValidateSegment は単一のパスセグメント（月ディレクトリ名やファイル名）を検証する。
// 空文字列、パス区切り文字、相対参照、NULバイトを含む場合はfalseを返す。
func (g *PathGuard) ValidateSegment(segment string) bool {
	if segment == "" {
		return false
	}
	if segment == "." || segment == ".." {
		return false
	}
	if strings.ContainsAny(segment, "/\\\x00") {
		return false
	}
	return true
}

// ValidateEntryPath は"<月>/<ファイル名>"形式のパスを検証する。
// ちょうど2つの有効なセグメントで構成されている場合のみtrueを返す。
func (g *PathGuard) ValidateEntryPath(path string) bool {
	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		return false
	}
	return g.ValidateSegment(parts[0]) && g.ValidateSegment(parts[1])
}
