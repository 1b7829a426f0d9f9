package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sentiment-admin/internal/tabular"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrInboxBusy = errors.New("inbox run already in progress")

const (
	processedDirName = "processed"
	failedDirName    = "failed"
)

// InboxResult 彙總一次收件匣處理的結果
type InboxResult struct {
	Files   int `json:"files"`
	Records int `json:"records"`
	Failed  int `json:"failed"`
}

// InboxService 批次分析丟進收件匣目錄的表格檔。
// 處理完的檔案移到 processed/，無法處理的移到 failed/，不會重複分析。
type InboxService struct {
	analyzer  *AnalyzeService
	inboxPath string
	user      string
	running   sync.Mutex
}

// NewInboxService 建立 InboxService 實例，並建立所需的目錄
func NewInboxService(analyzer *AnalyzeService, inboxPath string, user string) (*InboxService, error) {
	if analyzer == nil {
		return nil, errors.New("InboxService：AnalyzeService 不得為空")
	}
	if inboxPath == "" {
		return nil, errors.New("InboxService：收件匣路徑不得為空")
	}
	for _, dir := range []string{inboxPath, filepath.Join(inboxPath, processedDirName), filepath.Join(inboxPath, failedDirName)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "無法建立目錄 '%s'", dir)
		}
	}
	zap.S().Infof("[InboxService] 初始化完成，收件匣: %s", inboxPath)
	return &InboxService{analyzer: analyzer, inboxPath: inboxPath, user: user}, nil
}

func isTabularFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// pending 依檔名排序回傳待處理的檔案
func (s *InboxService) pending() ([]string, error) {
	entries, err := os.ReadDir(s.inboxPath)
	if err != nil {
		return nil, errors.Wrapf(err, "讀取收件匣 '%s' 失敗", s.inboxPath)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !isTabularFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *InboxService) processFile(ctx context.Context, name string) (int, error) {
	f, err := os.Open(filepath.Join(s.inboxPath, name))
	if err != nil {
		return 0, errors.Wrapf(err, "開啟檔案 '%s' 失敗", name)
	}
	defer f.Close()

	table, err := tabular.Read(f, name)
	if err != nil {
		return 0, err
	}
	records, err := s.analyzer.AnalyzeTable(ctx, table, s.user)
	return len(records), err
}

func (s *InboxService) move(name string, dirName string) {
	src := filepath.Join(s.inboxPath, name)
	dst := filepath.Join(s.inboxPath, dirName, name)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(name)
		dst = filepath.Join(s.inboxPath, dirName, strings.TrimSuffix(name, ext)+"."+s.analyzer.now().Format("20060102150405")+ext)
	}
	if err := os.Rename(src, dst); err != nil {
		zap.S().Errorf("[InboxService] 移動檔案 '%s' 到 '%s' 失敗: %v", src, dst, err)
	}
}

// Run 處理收件匣中所有檔案；同一時間只允許一個 Run
func (s *InboxService) Run(ctx context.Context) (InboxResult, error) {
	var result InboxResult
	if !s.running.TryLock() {
		return result, ErrInboxBusy
	}
	defer s.running.Unlock()

	names, err := s.pending()
	if err != nil {
		return result, err
	}
	if len(names) == 0 {
		zap.S().Debug("[InboxService] 收件匣沒有待處理的檔案。")
		return result, nil
	}

	var firstErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		count, err := s.processFile(ctx, name)
		result.Records += count
		if err != nil && ctx.Err() != nil {
			zap.S().Warnf("[InboxService] 任務已取消，檔案 '%s' 留在收件匣 (已寫入 %d 筆)。", name, count)
			return result, errors.Wrapf(ctx.Err(), "檔案 '%s'", name)
		}
		if err != nil {
			result.Failed++
			zap.S().Warnf("[InboxService] 檔案 '%s' 處理失敗 (已寫入 %d 筆): %v", name, count, err)
			s.move(name, failedDirName)
			if !errors.Is(err, ErrMissingTextColumn) && !errors.Is(err, tabular.ErrUnsupportedFormat) && firstErr == nil {
				firstErr = errors.Wrapf(err, "檔案 '%s'", name)
			}
			continue
		}
		result.Files++
		s.move(name, processedDirName)
		zap.S().Infof("[InboxService] 檔案 '%s' 處理完成，共 %d 筆。", name, count)
	}
	zap.S().Infof("[InboxService] 收件匣處理完成。成功檔案: %d, 失敗檔案: %d, 紀錄: %d", result.Files, result.Failed, result.Records)
	return result, firstErr
}
