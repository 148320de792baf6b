// Package filter はレポート記事の絞り込みとカテゴリグルーピングを提供する。
// すべて純粋関数で、ネットワークにもストレージにも触れない。
// フィルタ条件の変更ごと（キーストロークごと）に再計算しても安全。
package filter

import (
	"strings"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// Spec は絞り込み条件を表す。各条件はANDで結合される。
// 空のセット・空文字列はその軸で絞り込まないことを意味する。
type Spec struct {
	Sources     map[model.Source]bool // 空 = 全ソース
	Categories  map[string]bool       // 空 = 全カテゴリ
	SearchText  string                // 空 = テキスト検索なし
	CheckedOnly bool                  // true = チェック済みのみ
}

// IsEmpty は何も絞り込まない条件かどうかを返す。
func (s Spec) IsEmpty() bool {
	return len(s.Sources) == 0 && len(s.Categories) == 0 && s.SearchText == "" && !s.CheckedOnly
}

// Matches は記事が条件に合致するかどうかを返す。
// テキスト検索はtitle・titleJa・summary・categoryの連結に対する
// 大文字小文字を区別しない部分一致。
func (s Spec) Matches(a model.Article) bool {
	if len(s.Sources) > 0 && !s.Sources[a.Source] {
		return false
	}
	if len(s.Categories) > 0 && !s.Categories[a.Category] {
		return false
	}
	if s.CheckedOnly && !a.Checked {
		return false
	}
	if s.SearchText != "" {
		query := strings.ToLower(s.SearchText)
		searchable := strings.ToLower(a.Title + " " + a.TitleJa + " " + a.Summary + " " + a.Category)
		if !strings.Contains(searchable, query) {
			return false
		}
	}
	return true
}

// Apply は条件に合致する記事の部分列を入力順のまま返す。
// 入力は上流でスコア順にソート済みの前提で、並べ替えは行わない。
func Apply(articles []model.Article, spec Spec) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if spec.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// CategoryGroup はカテゴリとそのカテゴリに属する記事の組を表す。
type CategoryGroup struct {
	Category string
	Articles []model.Article
}

// GroupByCategory は絞り込み済みの記事をカテゴリごとにまとめる。
// カテゴリの出力順はorderHint（通常はSummary.byCategoryのキー順）での
// 初出順に従い、ヒントに無いカテゴリは記事の初出順で末尾に追加する。
// 記事が1件も無いヒントカテゴリは出力しない。グループ内の記事順は入力順を保つ。
func GroupByCategory(articles []model.Article, orderHint []string) []CategoryGroup {
	byCategory := make(map[string][]model.Article)
	for _, a := range articles {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	emitted := make(map[string]bool, len(byCategory))

	for _, category := range orderHint {
		if emitted[category] {
			continue
		}
		if list, ok := byCategory[category]; ok {
			groups = append(groups, CategoryGroup{Category: category, Articles: list})
			emitted[category] = true
		}
	}

	// ヒントに無いカテゴリは初出順で末尾へ
	for _, a := range articles {
		if emitted[a.Category] {
			continue
		}
		groups = append(groups, CategoryGroup{Category: a.Category, Articles: byCategory[a.Category]})
		emitted[a.Category] = true
	}

	return groups
}
