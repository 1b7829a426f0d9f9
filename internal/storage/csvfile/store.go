// Package csvfile 以單一 CSV 檔案保存分析紀錄，適合不需要資料庫的部署。
package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/storage/sqlstore"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Header 是紀錄檔的第一列，欄位順序固定
var Header = []string{
	"id", "date_time", "text", "sentiment", "subjectivity", "keywords",
	"language", "character_count", "user", "total_uses",
}

// Store 將所有紀錄保留在記憶體，並同步寫回檔案
type Store struct {
	mu      sync.Mutex
	path    string
	policy  sqlstore.Policy
	records []models.AnalysisRecord
	nextID  int64
}

// Open 載入既有的紀錄檔；檔案不存在時建立只有標題列的新檔
func Open(path string, policy sqlstore.Policy) (*Store, error) {
	if path == "" {
		return nil, errors.New("CSV 紀錄檔路徑不得為空")
	}
	if _, err := sqlstore.ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "無法建立紀錄檔目錄 '%s'", dir)
		}
	}

	s := &Store{path: path, policy: policy, nextID: 1}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := s.rewrite(nil); err != nil {
			return nil, err
		}
		zap.S().Infof("[csvfile] 已建立新的紀錄檔 '%s'。", path)
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "開啟紀錄檔 '%s' 失敗", path)
	}
	defer f.Close()

	records, err := readRecords(f)
	if errors.Is(err, errNoHeader) {
		if err := s.rewrite(nil); err != nil {
			return nil, err
		}
		zap.S().Warnf("[csvfile] 紀錄檔 '%s' 為空，已寫入標題列。", path)
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "解析紀錄檔 '%s' 失敗", path)
	}
	s.records = records
	for _, r := range records {
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	zap.S().Infof("[csvfile] 已載入紀錄檔 '%s'，共 %d 筆。", path, len(records))
	return s, nil
}

var errNoHeader = errors.New("紀錄檔沒有標題列")

// encoding/csv 讀取時會把欄位內的 \r\n 轉成 \n，文字欄位先跳脫 \r 與反斜線
var textEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func readRecords(r io.Reader) ([]models.AnalysisRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errNoHeader
	}
	for i, h := range Header {
		if rows[0][i] != h {
			return nil, errors.Errorf("標題列第 %d 欄為 '%s'，預期 '%s'", i+1, rows[0][i], h)
		}
	}

	records := make([]models.AnalysisRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		id, err := cast.ToInt64E(row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "第 %d 列 id 無效", n+2)
		}
		uses, err := cast.ToInt64E(row[9])
		if err != nil {
			return nil, errors.Wrapf(err, "第 %d 列 total_uses 無效", n+2)
		}
		record := models.AnalysisRecord{
			ID:           id,
			Text:         unescapeText(row[2]),
			Sentiment:    models.Sentiment(row[3]),
			Subjectivity: models.Subjectivity(row[4]),
			Keywords:     row[5],
			User:         row[8],
			TotalUses:    uses,
		}
		if ts, err := time.ParseInLocation(models.TimestampLayout, row[1], time.Local); err == nil {
			record.Timestamp = ts
		}
		if row[6] != "" {
			record.Language = models.NewJsonNullString(row[6])
		}
		if row[7] != "" {
			count, err := cast.ToInt64E(row[7])
			if err != nil {
				return nil, errors.Wrapf(err, "第 %d 列 character_count 無效", n+2)
			}
			record.CharacterCount = models.NewJsonNullInt64(count)
		}
		records = append(records, record)
	}
	return records, nil
}

func toRow(r models.AnalysisRecord) []string {
	row := []string{
		cast.ToString(r.ID),
		r.FormattedTimestamp(),
		escapeText(r.Text),
		string(r.Sentiment),
		string(r.Subjectivity),
		r.Keywords,
		"",
		"",
		r.User,
		cast.ToString(r.TotalUses),
	}
	if r.Language.Valid {
		row[6] = r.Language.String
	}
	if r.CharacterCount.Valid {
		row[7] = cast.ToString(r.CharacterCount.Int64)
	}
	return row
}

// rewrite 先寫入暫存檔再改名，避免中途失敗留下半份檔案
func (s *Store) rewrite(records []models.AnalysisRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "建立暫存檔失敗")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return errors.Wrap(err, "寫入標題列失敗")
	}
	for _, r := range records {
		if err := w.Write(toRow(r)); err != nil {
			tmp.Close()
			return errors.Wrapf(err, "寫入紀錄 ID %d 失敗", r.ID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "寫入暫存檔失敗")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "關閉暫存檔失敗")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "取代紀錄檔 '%s' 失敗", s.path)
	}
	return nil
}

func (s *Store) appendRow(r models.AnalysisRecord) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "開啟紀錄檔 '%s' 失敗", s.path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(toRow(r)); err != nil {
		f.Close()
		return errors.Wrap(err, "寫入紀錄失敗")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrap(err, "寫入紀錄失敗")
	}
	return errors.Wrap(f.Close(), "關閉紀錄檔失敗")
}

func (s *Store) AppendOrUpdate(ctx context.Context, record *models.AnalysisRecord) (int64, error) {
	if record == nil {
		return 0, errors.New("傳入的 record 不得為 nil")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy == sqlstore.PolicyDedup {
		for i := range s.records {
			existing := s.records[i]
			if existing.User != record.User || existing.Text != record.Text {
				continue
			}
			updated := make([]models.AnalysisRecord, len(s.records))
			copy(updated, s.records)
			updated[i].TotalUses++
			if err := s.rewrite(updated); err != nil {
				return 0, err
			}
			s.records = updated
			record.TotalUses = updated[i].TotalUses
			return existing.ID, nil
		}
		record.TotalUses = 1
	} else {
		var count int64
		for _, existing := range s.records {
			if existing.User == record.User {
				count++
			}
		}
		record.TotalUses = count + 1
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.ID = s.nextID
	if err := s.appendRow(*record); err != nil {
		return 0, err
	}
	s.records = append(s.records, *record)
	s.nextID++
	return record.ID, nil
}

// ListAll 依檔案順序回傳紀錄的複本
func (s *Store) ListAll(ctx context.Context) ([]models.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AnalysisRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
