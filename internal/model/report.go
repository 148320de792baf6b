// Package model はドメインモデルを定義する。
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source は記事の取得元を表す。
type Source string

const (
	// SourceHatena ははてなブックマーク人気エントリー。
	SourceHatena Source = "hatena"
	// SourceYahoo はYahooニュースRSS。
	SourceYahoo Source = "yahoo"
	// SourceReddit はRedditホット投稿。
	SourceReddit Source = "reddit"
)

// IsValid は既知のデータソースかどうかを返す。
func (s Source) IsValid() bool {
	switch s {
	case SourceHatena, SourceYahoo, SourceReddit:
		return true
	}
	return false
}

// Article はヘッドラインレポート内の個別記事を表す。
// checked以外のフィールドはレポート生成後イミュータブルとして扱う。
type Article struct {
	ID         string `json:"id"`                  // URLから導出される一意ID
	Title      string `json:"title"`               // 記事タイトル（原文）
	TitleJa    string `json:"titleJa,omitempty"`   // 日本語タイトル（英語記事の場合のみ）
	URL        string `json:"url"`                 // 記事URL
	Category   string `json:"category"`            // カテゴリ（自由記述ラベル）
	Source     Source `json:"source"`              // データソース
	Score      int    `json:"score"`               // スコア値（ソースごとに意味が異なる）
	ScoreLabel string `json:"scoreLabel"`          // 表示用スコアラベル
	Subreddit  string `json:"subreddit,omitempty"` // subreddit名（Reddit記事のみ）
	Summary    string `json:"summary"`             // 概要文
	Checked    bool   `json:"checked"`             // チェック状態（唯一の可変フィールド）
}

// TrendInsight はその日のホットトピックのトレンド分析を表す。
// RelatedArticleIDsは現在の記事セットに存在しないIDを含むことがある。
// 参照先が存在しない場合もエラーにはせず、表示側で読み飛ばす。
type TrendInsight struct {
	Topic             string   `json:"topic"`
	Description       string   `json:"description"`
	RelatedArticleIDs []string `json:"relatedArticleIds"`
}

// Summary はレポートの件数サマリーを表す。
// ByCategoryのキー順はデフォルトのカテゴリ表示順を定義するため意味を持つ。
type Summary struct {
	Total      int            `json:"total"`
	ByCategory CategoryCounts `json:"byCategory"`
}

// HeadlineReport は1日分のヘッドラインレポート全体を表す。
// 日付が論理キーで、各記事のchecked以外はイミュータブル。
type HeadlineReport struct {
	Date          string         `json:"date"`        // YYYY-MM-DD
	GeneratedAt   string         `json:"generatedAt"` // ISO 8601
	DataSources   []string       `json:"dataSources"`
	Summary       Summary        `json:"summary"`
	Articles      []Article      `json:"articles"`
	TrendAnalysis []TrendInsight `json:"trendAnalysis"`
}

// FindArticle は指定IDの記事へのポインタを返す。見つからない場合はnilを返す。
func (r *HeadlineReport) FindArticle(id string) *Article {
	for i := range r.Articles {
		if r.Articles[i].ID == id {
			return &r.Articles[i]
		}
	}
	return nil
}

// Clone はレポートのディープコピーを返す。
// OptimisticStoreのスナップショット取得に使用する。
func (r *HeadlineReport) Clone() *HeadlineReport {
	if r == nil {
		return nil
	}
	c := *r
	c.DataSources = append([]string(nil), r.DataSources...)
	c.Articles = append([]Article(nil), r.Articles...)
	c.Summary.ByCategory = r.Summary.ByCategory.Clone()
	c.TrendAnalysis = make([]TrendInsight, len(r.TrendAnalysis))
	for i, t := range r.TrendAnalysis {
		t.RelatedArticleIDs = append([]string(nil), t.RelatedArticleIDs...)
		c.TrendAnalysis[i] = t
	}
	return &c
}

// Validate はレポートのスキーマ整合性を検証する。
// 日付形式、記事ID重複、ソース値、summary.totalと記事数の一致を確認する。
func (r *HeadlineReport) Validate() error {
	if !IsReportDate(r.Date) {
		return fmt.Errorf("dateはYYYY-MM-DD形式である必要があります: %q", r.Date)
	}
	if r.Summary.Total != len(r.Articles) {
		return fmt.Errorf("summary.total(%d)が記事数(%d)と一致しません", r.Summary.Total, len(r.Articles))
	}
	seen := make(map[string]bool, len(r.Articles))
	for _, a := range r.Articles {
		if a.ID == "" {
			return fmt.Errorf("記事IDが空です: %q", a.Title)
		}
		if seen[a.ID] {
			return fmt.Errorf("記事IDが重複しています: %s", a.ID)
		}
		seen[a.ID] = true
		if !a.Source.IsValid() {
			return fmt.Errorf("未知のデータソースです: %s (記事 %s)", a.Source, a.ID)
		}
	}
	return nil
}

// IsReportDate は文字列がYYYY-MM-DD形式の日付かどうかを返す。
// カレンダー上の妥当性までは検証しない（論理キーの形式チェックのみ）。
func IsReportDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ReportDateEntry はレポート日付一覧の1エントリを表す。
type ReportDateEntry struct {
	Date    string  `json:"date"`
	Path    string  `json:"path"` // 例: "2026-02/2026-02-11.json"
	Summary Summary `json:"summary"`
}

// CategoryCounts はカテゴリ別件数を、JSONオブジェクトでの出現順を保ったまま保持する。
// 通常のmapではキー順が失われるため、デコーダのトークン列から順序を復元する。
type CategoryCounts struct {
	keys   []string
	counts map[string]int
}

// NewCategoryCounts は空のCategoryCountsを返す。
func NewCategoryCounts() CategoryCounts {
	return CategoryCounts{counts: make(map[string]int)}
}

// Set はカテゴリの件数を設定する。未知のカテゴリは末尾に追加される。
func (c *CategoryCounts) Set(category string, count int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[category]; !ok {
		c.keys = append(c.keys, category)
	}
	c.counts[category] = count
}

// Get はカテゴリの件数を返す。
func (c CategoryCounts) Get(category string) (int, bool) {
	n, ok := c.counts[category]
	return n, ok
}

// Keys は出現順のカテゴリ名一覧のコピーを返す。
func (c CategoryCounts) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len は保持しているカテゴリ数を返す。
func (c CategoryCounts) Len() int {
	return len(c.keys)
}

// Clone はディープコピーを返す。
func (c CategoryCounts) Clone() CategoryCounts {
	out := CategoryCounts{
		keys:   append([]string(nil), c.keys...),
		counts: make(map[string]int, len(c.counts)),
	}
	for k, v := range c.counts {
		out.counts[k] = v
	}
	return out
}

// MarshalJSON はキーの出現順を保ったJSONオブジェクトを出力する。
func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", c.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON はJSONオブジェクトをキーの出現順を保って読み込む。
// 値が整数でないキーはエラーとする。
func (c *CategoryCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("byCategoryはJSONオブジェクトである必要があります")
	}

	*c = NewCategoryCounts()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("byCategoryのキーの読み取りに失敗しました")
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("byCategory[%s]の値が数値ではありません", key)
		}
		n, err := num.Int64()
		if err != nil {
			return fmt.Errorf("byCategory[%s]の値が整数ではありません: %w", key, err)
		}
		c.Set(key, int(n))
	}

	// 閉じブレース
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
