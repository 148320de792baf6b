package model

// FavoriteArticle はお気に入り登録されたDeepDive記事を表す。
// ArticleIDはDeepDiveファイルのpath（"<月>/<ファイル名>"）で、
// 永続化されたリスト内で一意となる。
type FavoriteArticle struct {
	ArticleID string `json:"articleId"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	AddedAt   string `json:"addedAt"` // 登録日時（ISO 8601）
}

// DeepDiveEntry はDeepDiveファイル一覧の1エントリを表す。
// Pathは"<月>/<ファイル名>"で、お気に入りのArticleIDとしても使用される。
type DeepDiveEntry struct {
	Filename string `json:"filename"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Path     string `json:"path"`
}
