// Package migrations 內嵌各資料庫方言的 schema 遷移腳本。
package migrations

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:embed mysql/*.sql sqlite/*.sql
var files embed.FS

// Up 將資料庫遷移到最新版本。dialect 為 "mysql" 或 "sqlite"，
// databaseURL 需帶有 migrate 的 scheme，例如 sqlite://./data/app.db。
func Up(databaseURL string, dialect string) error {
	source, err := iofs.New(files, dialect)
	if err != nil {
		return errors.Wrapf(err, "載入 %s 遷移腳本失敗", dialect)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return errors.Wrap(err, "建立遷移實例失敗")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			zap.S().Warnf("[migrations] 關閉遷移實例時發生錯誤: source=%v, database=%v", srcErr, dbErr)
		}
	}()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "獲取資料庫遷移版本失敗")
	}
	if dirty {
		return errors.Errorf("資料庫處於 dirty 狀態 (版本 %d)，遷移失敗", currentVersion)
	}
	zap.S().Infof("[migrations] 目前資料庫版本: %d。開始應用遷移...", currentVersion)

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		zap.S().Info("[migrations] 資料庫結構已是最新，無需遷移。")
	case err != nil:
		return errors.Wrap(err, "執行資料庫遷移 (m.Up) 失敗")
	default:
		newVersion, _, _ := m.Version()
		zap.S().Infof("[migrations] 資料庫遷移成功完成，版本更新至: %d。", newVersion)
	}
	return nil
}
