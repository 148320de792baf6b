// Package config は環境変数ベースのアプリケーション設定を提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	DataDir string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit (req/min/IP)
	RateLimitGeneral  int
	RateLimitMutation int

	// Collect
	CollectTimeout    time.Duration
	CollectUserAgent  string
	HatenaFeedURL     string
	YahooFeedURL      string
	RedditSubreddits  []string
	RedditLimit       int
	CollectMaxPerFeed int
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数が優先）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("required environment variable is not set: DATA_DIR")
	}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMutation = getEnvInt("RATE_LIMIT_MUTATION", 30)

	cfg.CollectTimeout = getEnvDuration("COLLECT_TIMEOUT", 15*time.Second)
	cfg.CollectUserAgent = getEnvString("COLLECT_USER_AGENT", "trendview-collector/1.0")
	cfg.HatenaFeedURL = getEnvString("HATENA_FEED_URL", "https://b.hatena.ne.jp/hotentry/it.rss")
	cfg.YahooFeedURL = getEnvString("YAHOO_FEED_URL", "https://news.yahoo.co.jp/rss/topics/it.xml")
	cfg.RedditSubreddits = getEnvList("REDDIT_SUBREDDITS", []string{"technology", "programming"})
	cfg.RedditLimit = getEnvInt("REDDIT_LIMIT", 25)
	cfg.CollectMaxPerFeed = getEnvInt("COLLECT_MAX_PER_FEED", 30)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの環境変数をスライスとして読み込む。
// 空要素は読み飛ばす。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	var items []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}
