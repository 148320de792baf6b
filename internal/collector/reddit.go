package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/silmo-yokohama/trendview/internal/model"
)

const (
	// defaultRedditEndpoint はRedditホット投稿JSON APIのエンドポイントテンプレート。
	defaultRedditEndpoint = "https://old.reddit.com/r/%s/hot.json?limit=%d&t=day"
)

// RedditClient はRedditのホット投稿JSON APIのクライアント。
type RedditClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewRedditClient はRedditClientの新しいインスタンスを生成する。
func NewRedditClient(httpClient *http.Client, logger *slog.Logger, userAgent string) *RedditClient {
	return &RedditClient{
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
		endpoint:   defaultRedditEndpoint,
	}
}

// redditListing はRedditのリスティングAPIレスポンス。
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// redditPost はホット投稿1件分のデータ。
type redditPost struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Permalink   string `json:"permalink"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Stickied    bool   `json:"stickied"`
	IsSelf      bool   `json:"is_self"`
}

// FetchHot は指定subredditのホット投稿を記事として取得する。
// ピン留め投稿（アナウンス等）は読み飛ばす。
func (c *RedditClient) FetchHot(ctx context.Context, subreddit string, limit int) ([]model.Article, error) {
	apiURL := fmt.Sprintf(c.endpoint, subreddit, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Reddit APIの呼び出しに失敗しました",
			slog.String("subreddit", subreddit),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Reddit APIがエラーステータスを返しました",
			slog.String("subreddit", subreddit),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("Reddit APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	articles := make([]model.Article, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data

		// ピン留め投稿はスキップ
		if post.Stickied {
			continue
		}
		if post.Title == "" {
			continue
		}

		// 自己投稿はpermalinkを記事URLとして使用する
		url := post.URL
		if post.IsSelf || url == "" {
			if post.Permalink == "" {
				continue
			}
			url = "https://old.reddit.com" + post.Permalink
		}

		articles = append(articles, model.Article{
			Title:      post.Title,
			URL:        url,
			Source:     model.SourceReddit,
			Score:      post.Score,
			ScoreLabel: fmt.Sprintf("%dpt %dcomments", post.Score, post.NumComments),
			Subreddit:  "r/" + subreddit,
		})
	}

	return articles, nil
}
