package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"sentiment-admin/internal/config"
	"sentiment-admin/internal/storage/sqlstore"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func dsn(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
}

// MigrationURL 回傳 golang-migrate 使用的連線字串
func MigrationURL(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("mysql://%s&multiStatements=true", dsn(dbCfg))
}

// NewMySQLStore 連線到 MySQL 並回傳共用的 SQL Store
func NewMySQLStore(dbCfg config.DatabaseConfig, policy sqlstore.Policy) (*sqlstore.Store, error) {
	if dbCfg.Driver != config.DriverMySQL {
		return nil, errors.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	db, err := sql.Open("mysql", dsn(dbCfg))
	if err != nil {
		return nil, errors.Wrap(err, "開啟資料庫連線失敗")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "無法連線到資料庫 (ping 失敗)")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	zap.S().Infof("[mysql] 成功連線到 MySQL 資料庫 %s@%s:%d/%s。", dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	return sqlstore.New(db, sqlstore.DialectMySQL, policy)
}
