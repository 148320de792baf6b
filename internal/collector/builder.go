package collector

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// ArticleID はURLから記事の一意IDを導出する。
// sha256ハッシュの先頭8桁（16進）を使用する。
func ArticleID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:8]
}

// BuildReport は収集した記事からレポート草稿を組み立てる。
//   - 各記事にURL由来のIDを割り当て、ID重複（同一URL）は先勝ちで除去する
//   - 記事はカテゴリの初出順にグループ化し、カテゴリ内はスコア降順に並べる
//   - サマリーのbyCategoryのキー順は記事の並びと同じカテゴリ順になる
//   - トレンド分析は手動で執筆するため空で初期化する
func BuildReport(date string, generatedAt time.Time, articles []model.Article, dataSources []string) *model.HeadlineReport {
	// ID割り当てとURL重複の除去
	seen := make(map[string]bool, len(articles))
	deduped := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		a.ID = ArticleID(a.URL)
		a.Checked = false
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		deduped = append(deduped, a)
	}

	// カテゴリ初出順を記録
	categoryOrder := make(map[string]int)
	for _, a := range deduped {
		if _, ok := categoryOrder[a.Category]; !ok {
			categoryOrder[a.Category] = len(categoryOrder)
		}
	}

	// カテゴリ初出順 → カテゴリ内スコア降順。同点は入力順を保つ。
	sort.SliceStable(deduped, func(i, j int) bool {
		ci, cj := categoryOrder[deduped[i].Category], categoryOrder[deduped[j].Category]
		if ci != cj {
			return ci < cj
		}
		return deduped[i].Score > deduped[j].Score
	})

	// サマリー集計
	summary := model.Summary{Total: len(deduped)}
	for _, a := range deduped {
		n, _ := summary.ByCategory.Get(a.Category)
		summary.ByCategory.Set(a.Category, n+1)
	}

	return &model.HeadlineReport{
		Date:          date,
		GeneratedAt:   generatedAt.Format(time.RFC3339),
		DataSources:   dataSources,
		Summary:       summary,
		Articles:      deduped,
		TrendAnalysis: []model.TrendInsight{},
	}
}
