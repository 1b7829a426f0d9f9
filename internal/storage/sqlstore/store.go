// Package sqlstore 是 analysis_logs 資料表的 database/sql 實作，MySQL 與 SQLite 共用。
package sqlstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"sentiment-admin/internal/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Policy 決定重複送出的文本如何記錄
type Policy string

const (
	// PolicyAppend 每次送出都新增一列，total_uses = 該使用者既有列數 + 1
	PolicyAppend Policy = "append"
	// PolicyDedup 相同 (text, user) 只保留一列，重複送出時累加 total_uses
	PolicyDedup Policy = "dedup"
)

// Dialect 區分 SQL 方言的差異 (目前只有列鎖)
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// ParsePolicy 將設定值轉為 Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAppend, PolicyDedup:
		return Policy(s), nil
	default:
		return "", errors.Errorf("不支援的紀錄策略: %s", s)
	}
}

// Store 結構
type Store struct {
	db      *sql.DB
	dialect Dialect
	policy  Policy
}

// New 以已開啟的連線建立 Store；資料表需已由 migrations 建立
func New(db *sql.DB, dialect Dialect, policy Policy) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore：*sql.DB 不得為 nil")
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect, policy: policy}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		zap.S().Infof("正在關閉 %s 資料庫連線...", s.dialect)
		return s.db.Close()
	}
	return nil
}

// TextHash 是 text_hash 欄位的值，僅作為查詢索引
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *Store) lockClause() string {
	if s.dialect == DialectMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// AppendOrUpdate 在同一個交易內完成查詢與寫入
func (s *Store) AppendOrUpdate(ctx context.Context, record *models.AnalysisRecord) (int64, error) {
	if record == nil {
		return 0, errors.New("傳入的 record 不得為 nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "開始交易失敗")
	}
	defer tx.Rollback()

	hash := TextHash(record.Text)
	switch s.policy {
	case PolicyDedup:
		var id, uses int64
		query := "SELECT id, total_uses FROM analysis_logs WHERE user_name = ? AND text_hash = ? AND text = ? ORDER BY id LIMIT 1" + s.lockClause()
		err := tx.QueryRowContext(ctx, query, record.User, hash, record.Text).Scan(&id, &uses)
		if err == nil {
			if _, err := tx.ExecContext(ctx, "UPDATE analysis_logs SET total_uses = total_uses + 1 WHERE id = ?", id); err != nil {
				return 0, errors.Wrapf(err, "更新紀錄 ID %d 的使用次數失敗", id)
			}
			if err := tx.Commit(); err != nil {
				return 0, errors.Wrap(err, "提交交易失敗")
			}
			record.TotalUses = uses + 1
			zap.S().Debugf("[sqlstore] 重複文本，紀錄 ID %d 使用次數更新為 %d", id, record.TotalUses)
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrap(err, "查詢重複紀錄失敗")
		}
		record.TotalUses = 1
	default:
		var count int64
		query := "SELECT COUNT(*) FROM analysis_logs WHERE user_name = ?" + s.lockClause()
		if err := tx.QueryRowContext(ctx, query, record.User).Scan(&count); err != nil {
			return 0, errors.Wrapf(err, "計算使用者 '%s' 的紀錄數失敗", record.User)
		}
		record.TotalUses = count + 1
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_logs (
			date_time, text, text_hash, sentiment, subjectivity, keywords,
			language, character_count, user_name, total_uses
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.Format(models.TimestampLayout),
		record.Text,
		hash,
		string(record.Sentiment),
		string(record.Subjectivity),
		record.Keywords,
		record.Language.NullString,
		record.CharacterCount.NullInt64,
		record.User,
		record.TotalUses,
	)
	if err != nil {
		return 0, errors.Wrap(err, "插入分析紀錄失敗")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "獲取新插入紀錄的 ID 失敗")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "提交交易失敗")
	}
	record.ID = id
	return id, nil
}

// ListAll 依建立順序回傳所有紀錄
func (s *Store) ListAll(ctx context.Context) ([]models.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date_time, text, sentiment, subjectivity, keywords,
			language, character_count, user_name, total_uses
		FROM analysis_logs ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "查詢分析紀錄失敗")
	}
	defer rows.Close()

	var records []models.AnalysisRecord
	for rows.Next() {
		var r models.AnalysisRecord
		var dateTime, sentiment, subjectivity string
		if err := rows.Scan(&r.ID, &dateTime, &r.Text, &sentiment, &subjectivity, &r.Keywords,
			&r.Language.NullString, &r.CharacterCount.NullInt64, &r.User, &r.TotalUses); err != nil {
			return nil, errors.Wrap(err, "掃描分析紀錄失敗")
		}
		r.Sentiment = models.Sentiment(sentiment)
		r.Subjectivity = models.Subjectivity(subjectivity)
		if ts, err := time.ParseInLocation(models.TimestampLayout, dateTime, time.Local); err == nil {
			r.Timestamp = ts
		} else {
			zap.S().Warnf("[sqlstore] 紀錄 ID %d 的 date_time '%s' 無法解析: %v", r.ID, dateTime, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "處理分析紀錄結果集時發生錯誤")
	}
	return records, nil
}
