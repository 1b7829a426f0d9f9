// Package sqlite 開啟本機 SQLite 檔案作為分析紀錄的預設後端。
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"sentiment-admin/internal/storage/sqlstore"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MigrationURL 回傳 golang-migrate 使用的連線字串
func MigrationURL(path string) string {
	return "sqlite://" + path
}

// EnsureDir 建立資料庫檔案所在的目錄
func EnsureDir(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "無法建立資料庫目錄 '%s'", dir)
		}
	}
	return nil
}

// Open 開啟 (必要時建立) 資料庫檔案並回傳 Store；schema 需先以 migrations.Up 建立
func Open(ctx context.Context, path string, policy sqlstore.Policy) (*sqlstore.Store, error) {
	if path == "" {
		return nil, errors.New("SQLite 資料庫路徑不得為空")
	}
	if err := EnsureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "開啟 SQLite 資料庫失敗")
	}
	// 單一連線，寫入交易依序執行
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "設定 '%s' 失敗", pragma)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "無法連線到 SQLite 資料庫 (ping 失敗)")
	}

	zap.S().Infof("[sqlite] 成功開啟資料庫 '%s'。", path)
	return sqlstore.New(db, sqlstore.DialectSQLite, policy)
}
