// Package storage はフラットファイルへの永続化ゲートウェイを提供する。
// レポート・お気に入り・DeepDiveの各リソースをディスク上のJSON/Markdownとして
// 読み書きする。インメモリキャッシュは持たず、毎回ディスクへラウンドトリップする。
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/silmo-yokohama/trendview/internal/model"
)

const (
	// headlinesDir はレポートJSONを格納するディレクトリ名。
	headlinesDir = "Headlines"
	// deepDivesDir はDeepDive Markdownを格納するディレクトリ名。
	deepDivesDir = "DeepDives"
	// favoritesFile はお気に入りリストのファイル名。
	favoritesFile = "favorites.json"
)

// FileStore はデータディレクトリ配下のフラットファイルを唯一の信頼点として扱う
// 永続化ゲートウェイ。書き込みは対象リソースの全置換で、一時ファイルへの書き出しと
// リネームにより中途半端な内容がディスクに残らないことを保証する。
// 論理キー（日付、お気に入りリスト）ごとのミューテックスで
// read-modify-writeサイクルを直列化する。
type FileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore はFileStoreの新しいインスタンスを生成する。
// rootはHeadlines/・DeepDives/・favorites.jsonを含むデータディレクトリ。
func NewFileStore(root string) *FileStore {
	return &FileStore{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

// Root はデータディレクトリのパスを返す。
func (s *FileStore) Root() string {
	return s.root
}

// Ping はデータディレクトリにアクセス可能かどうかを確認する。
// ヘルスチェックで使用する。
func (s *FileStore) Ping() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("データディレクトリにアクセスできません: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("データディレクトリがディレクトリではありません: %s", s.root)
	}
	return nil
}

// keyLock は論理キーに対応するミューテックスを返す。
// 同一キーへの並行ミューテーションの直列化点として使用する。
func (s *FileStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// reportPath は日付からレポートファイルのパスを組み立てる。
// YYYY-MM-DD → Headlines/YYYY-MM/YYYY-MM-DD.json
func (s *FileStore) reportPath(date string) string {
	month := date[:7]
	return filepath.Join(s.root, headlinesDir, month, date+".json")
}

// ReadReport は指定日のレポートを読み込む。
// ファイルが存在しない場合は(nil, nil)を返す。
// スキーマ検証に失敗したドキュメントはINVALID_REPORTエラーとして拒否し、
// 不正な内容を上位層へ伝播させない。
func (s *FileStore) ReadReport(date string) (*model.HeadlineReport, error) {
	if !model.IsReportDate(date) {
		return nil, nil
	}

	data, err := os.ReadFile(s.reportPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("レポートの読み込みに失敗しました: %w", err)
	}

	var report model.HeadlineReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, model.NewInvalidReportError(date, err)
	}
	if err := report.Validate(); err != nil {
		return nil, model.NewInvalidReportError(date, err)
	}
	return &report, nil
}

// WriteReport は指定日のレポートを全置換で書き込む。
// 整形済み（2スペースインデント）JSONで出力する。レポートファイルは
// 手編集されるため、差分が読める形式であることは設計上の要件。
func (s *FileStore) WriteReport(date string, report *model.HeadlineReport) error {
	if !model.IsReportDate(date) {
		return model.NewInvalidReportError(date, fmt.Errorf("日付の形式が不正です: %q", date))
	}
	if err := report.Validate(); err != nil {
		return model.NewInvalidReportError(date, err)
	}
	return s.writeJSON(s.reportPath(date), report)
}

// MutateReport はレポートのread-modify-writeサイクルを1つの論理単位として実行する。
// 同一日付への並行ミューテーションはキー単位のミューテックスで直列化され、
// check-then-actの更新消失を防ぐ。レポートが存在しない場合はfnにnilが渡される。
// fnがエラーを返した場合は書き込みを行わない。
// 日付形式が不正な場合はパス組み立てに進まず、存在しないレポートとして扱う。
func (s *FileStore) MutateReport(date string, fn func(report *model.HeadlineReport) error) error {
	if !model.IsReportDate(date) {
		return fn(nil)
	}

	lock := s.keyLock(s.reportPath(date))
	lock.Lock()
	defer lock.Unlock()

	report, err := s.ReadReport(date)
	if err != nil {
		return err
	}
	if err := fn(report); err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	return s.WriteReport(date, report)
}

// favoritesPath はお気に入りリストのファイルパスを返す。
func (s *FileStore) favoritesPath() string {
	return filepath.Join(s.root, favoritesFile)
}

// ReadFavorites はお気に入りリストを読み込む。
// ファイルが存在しない場合は空のリストを返し、エラーにはしない（初回起動対応）。
func (s *FileStore) ReadFavorites() ([]model.FavoriteArticle, error) {
	data, err := os.ReadFile(s.favoritesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []model.FavoriteArticle{}, nil
		}
		return nil, fmt.Errorf("お気に入りの読み込みに失敗しました: %w", err)
	}

	var favorites []model.FavoriteArticle
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, fmt.Errorf("お気に入りファイルの解析に失敗しました: %w", err)
	}
	if favorites == nil {
		favorites = []model.FavoriteArticle{}
	}
	return favorites, nil
}

// WriteFavorites はお気に入りリストを全置換で書き込む。
func (s *FileStore) WriteFavorites(favorites []model.FavoriteArticle) error {
	return s.writeJSON(s.favoritesPath(), favorites)
}

// MutateFavorites はお気に入りリストのread-modify-writeサイクルを
// 1つの論理単位として実行する。fnは更新後のリストを返す。
// fnがエラーを返した場合は書き込みを行わない。
func (s *FileStore) MutateFavorites(fn func(favorites []model.FavoriteArticle) ([]model.FavoriteArticle, error)) error {
	lock := s.keyLock(s.favoritesPath())
	lock.Lock()
	defer lock.Unlock()

	favorites, err := s.ReadFavorites()
	if err != nil {
		return err
	}
	updated, err := fn(favorites)
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}
	return s.WriteFavorites(updated)
}

// ReadDeepDive は指定パスのDeepDive Markdown本文を読み込む。
// ファイルが存在しない場合はfoundがfalseとなり、エラーにはしない。
// monthとfilenameは呼び出し側でPathGuardにより検証済みであること。
func (s *FileStore) ReadDeepDive(month, filename string) (content string, found bool, err error) {
	data, err := os.ReadFile(filepath.Join(s.root, deepDivesDir, month, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("DeepDiveの読み込みに失敗しました: %w", err)
	}
	return string(data), true, nil
}

// writeJSON は整形済みJSONを一時ファイル経由でアトミックに書き込む。
// 親ディレクトリが存在しない場合は作成する。
// renameが同一ファイルシステム内で完結するよう、一時ファイルは対象と同じ
// ディレクトリに作成する。
func (s *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSONへの変換に失敗しました: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルへの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルのクローズに失敗しました: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("一時ファイルの権限設定に失敗しました: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ファイルの置き換えに失敗しました: %w", err)
	}
	return nil
}
