// Package collector は外部ソースからのヘッドライン収集とレポート草稿の組み立てを提供する。
package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// Source は1つの収集対象ソースを表す。
type Source interface {
	// Name はメトリクスとログで使用するソース名を返す。
	Name() string
	// Collect はソースから記事を収集する。記事のIDは未設定でよい。
	Collect(ctx context.Context) ([]model.Article, error)
}

// HatenaSource ははてなブックマーク人気エントリーRSSの収集ソース。
type HatenaSource struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	feedURL    string
	max        int
}

// NewHatenaSource はHatenaSourceの新しいインスタンスを生成する。
func NewHatenaSource(httpClient *http.Client, logger *slog.Logger, userAgent, feedURL string, max int) *HatenaSource {
	return &HatenaSource{
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
		feedURL:    feedURL,
		max:        max,
	}
}

// Name はソース名を返す。
func (s *HatenaSource) Name() string { return string(model.SourceHatena) }

// Collect ははてなブックマークRSSから記事を収集する。
// スコアはhatena名前空間のブックマーク数から取得する。
func (s *HatenaSource) Collect(ctx context.Context) ([]model.Article, error) {
	feed, err := fetchAndParseFeed(ctx, s.httpClient, s.userAgent, s.feedURL)
	if err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		bookmarks := hatenaBookmarkCount(item)

		articles = append(articles, model.Article{
			Title:      item.Title,
			URL:        item.Link,
			Category:   hatenaCategory(item),
			Source:     model.SourceHatena,
			Score:      bookmarks,
			ScoreLabel: fmt.Sprintf("%d users", bookmarks),
			Summary:    item.Description,
		})

		if s.max > 0 && len(articles) >= s.max {
			break
		}
	}

	return articles, nil
}

// hatenaBookmarkCount はhatena名前空間拡張からブックマーク数を取り出す。
func hatenaBookmarkCount(item *gofeed.Item) int {
	exts, ok := item.Extensions["hatena"]
	if !ok {
		return 0
	}
	values, ok := exts["bookmarkcount"]
	if !ok || len(values) == 0 {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(values[0].Value))
	if err != nil {
		return 0
	}
	return count
}

// hatenaCategory はdc:subjectの先頭タグをカテゴリとして使用する。
func hatenaCategory(item *gofeed.Item) string {
	if len(item.Categories) > 0 && item.Categories[0] != "" {
		return item.Categories[0]
	}
	return "テクノロジー"
}

// YahooSource はYahooニュースRSSの収集ソース。
type YahooSource struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	feedURL    string
	max        int
}

// NewYahooSource はYahooSourceの新しいインスタンスを生成する。
func NewYahooSource(httpClient *http.Client, logger *slog.Logger, userAgent, feedURL string, max int) *YahooSource {
	return &YahooSource{
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
		feedURL:    feedURL,
		max:        max,
	}
}

// Name はソース名を返す。
func (s *YahooSource) Name() string { return string(model.SourceYahoo) }

// Collect はYahooニュースRSSから記事を収集する。
// Yahooのフィードにはスコアがないため、配信元メディア名をスコアラベルとして使用する。
func (s *YahooSource) Collect(ctx context.Context) ([]model.Article, error) {
	feed, err := fetchAndParseFeed(ctx, s.httpClient, s.userAgent, s.feedURL)
	if err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		articles = append(articles, model.Article{
			Title:      item.Title,
			URL:        item.Link,
			Category:   "ニュース",
			Source:     model.SourceYahoo,
			Score:      0,
			ScoreLabel: yahooPublisher(item.Title),
			Summary:    item.Description,
		})

		if s.max > 0 && len(articles) >= s.max {
			break
		}
	}

	return articles, nil
}

// yahooPublisher はタイトル末尾の「(配信元)」から配信元メディア名を取り出す。
// 取り出せない場合は"Yahoo"を返す。
func yahooPublisher(title string) string {
	if !strings.HasSuffix(title, ")") && !strings.HasSuffix(title, "）") {
		return "Yahoo"
	}

	open := strings.LastIndexAny(title, "(（")
	if open < 0 {
		return "Yahoo"
	}

	publisher := strings.TrimRight(title[open:], ")）")
	publisher = strings.TrimLeft(publisher, "(（")
	if publisher == "" {
		return "Yahoo"
	}
	return publisher
}

// RedditSource はReddit JSON APIの収集ソース。複数subredditを束ねる。
type RedditSource struct {
	client     *RedditClient
	logger     *slog.Logger
	subreddits []string
	limit      int
	category   string
}

// NewRedditSource はRedditSourceの新しいインスタンスを生成する。
func NewRedditSource(client *RedditClient, logger *slog.Logger, subreddits []string, limit int, category string) *RedditSource {
	return &RedditSource{
		client:     client,
		logger:     logger,
		subreddits: subreddits,
		limit:      limit,
		category:   category,
	}
}

// Name はソース名を返す。
func (s *RedditSource) Name() string { return string(model.SourceReddit) }

// Collect は全subredditのホット投稿を収集する。
// 一部のsubredditが失敗しても残りは継続し、全滅した場合のみエラーを返す。
func (s *RedditSource) Collect(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	var failures int

	for _, subreddit := range s.subreddits {
		posts, err := s.client.FetchHot(ctx, subreddit, s.limit)
		if err != nil {
			failures++
			s.logger.Warn("subredditの収集に失敗しました",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()),
			)
			continue
		}

		for i := range posts {
			posts[i].Category = s.category
		}
		articles = append(articles, posts...)
	}

	if len(s.subreddits) > 0 && failures == len(s.subreddits) {
		return nil, fmt.Errorf("全subredditの収集に失敗しました（%d件）", failures)
	}

	return articles, nil
}

// fetchAndParseFeed はRSSフィードを取得しgofeedでパースする。
func fetchAndParseFeed(ctx context.Context, client *http.Client, userAgent, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("フィードがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	return feed, nil
}
