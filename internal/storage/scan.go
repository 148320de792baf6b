package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/silmo-yokohama/trendview/internal/model"
)

// deepDiveFilePattern はDeepDiveファイル名の形式（YYYY-MM-DD_タイトル.md）。
var deepDiveFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(.+)\.md$`)

// ListReportDates は利用可能なレポート日付の一覧を件数サマリー付きで返す。
// 日付の新しい順にソートする。Headlinesディレクトリが存在しない場合や
// 解析できないファイルがある場合はエラーにせず、読めたものだけを返す
// （初回起動時のフレンドリーな縮退動作）。
func (s *FileStore) ListReportDates() ([]model.ReportDateEntry, error) {
	root := filepath.Join(s.root, headlinesDir)
	months, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ReportDateEntry{}, nil
		}
		return nil, err
	}

	entries := []model.ReportDateEntry{}
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, month.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
				continue
			}
			path := filepath.Join(root, month.Name(), file.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("レポートファイルの読み込みをスキップしました",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				continue
			}

			// 一覧に必要なのはdateとsummaryのみ
			var head struct {
				Date    string        `json:"date"`
				Summary model.Summary `json:"summary"`
			}
			if err := json.Unmarshal(data, &head); err != nil || !model.IsReportDate(head.Date) {
				slog.Warn("不正なレポートファイルをスキップしました",
					slog.String("path", path),
				)
				continue
			}

			entries = append(entries, model.ReportDateEntry{
				Date:    head.Date,
				Path:    month.Name() + "/" + file.Name(),
				Summary: head.Summary,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	return entries, nil
}

// ListDeepDives はDeepDiveファイルの一覧を返す。
// ファイル名パターンに合致しないファイルは読み飛ばす。
// 日付の新しい順、同日付内はタイトルの昇順でソートする。
func (s *FileStore) ListDeepDives() ([]model.DeepDiveEntry, error) {
	root := filepath.Join(s.root, deepDivesDir)
	months, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.DeepDiveEntry{}, nil
		}
		return nil, err
	}

	entries := []model.DeepDiveEntry{}
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, month.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			m := deepDiveFilePattern.FindStringSubmatch(file.Name())
			if m == nil {
				continue
			}
			entries = append(entries, model.DeepDiveEntry{
				Filename: file.Name(),
				Date:     m[1],
				Title:    m[2],
				Path:     month.Name() + "/" + file.Name(),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Title < entries[j].Title
	})
	return entries, nil
}
