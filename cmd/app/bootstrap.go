package main

import (
	"context"
	stderrors "errors"

	"sentiment-admin/internal/clients/gemini"
	"sentiment-admin/internal/clients/langdetect"
	"sentiment-admin/internal/clients/rake"
	"sentiment-admin/internal/clients/vader"
	"sentiment-admin/internal/config"
	"sentiment-admin/internal/services"
	"sentiment-admin/internal/storage/csvfile"
	"sentiment-admin/internal/storage/migrations"
	"sentiment-admin/internal/storage/mysql"
	"sentiment-admin/internal/storage/sqlite"
	"sentiment-admin/internal/storage/sqlstore"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// loadConfig 讀取並驗證設定，並依 log.development 切換 logger
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configDir, opts.configName)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Errorf("設定檔驗證錯誤: %v", stderrors.Join(errs...))
	}
	if cfg.Log.Development {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, errors.Wrap(err, "建立 development logger 失敗")
		}
		zap.ReplaceGlobals(logger)
	}
	zap.S().Infof("應用程式設定載入成功 (%s)。", cfg.AppName)
	return cfg, nil
}

// runMigrations 將 SQL 後端遷移到最新版本；CSV 後端不需要
func runMigrations(cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if err := sqlite.EnsureDir(cfg.Database.Path); err != nil {
			return err
		}
		return migrations.Up(sqlite.MigrationURL(cfg.Database.Path), string(sqlstore.DialectSQLite))
	case config.DriverMySQL:
		return migrations.Up(mysql.MigrationURL(cfg.Database), string(sqlstore.DialectMySQL))
	default:
		zap.S().Infof("資料庫驅動程式 '%s' 不需要遷移。", cfg.Database.Driver)
		return nil
	}
}

func openStore(ctx context.Context, cfg *config.Config) (services.LogStore, error) {
	policy, err := sqlstore.ParsePolicy(cfg.LogStore.Policy)
	if err != nil {
		return nil, err
	}
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Database.Path, policy)
	case config.DriverMySQL:
		return mysql.NewMySQLStore(cfg.Database, policy)
	case config.DriverCSV:
		return csvfile.Open(cfg.Database.Path, policy)
	default:
		return nil, errors.Errorf("不支援的資料庫驅動程式: %s", cfg.Database.Driver)
	}
}

type closer func() error

func newScorer(ctx context.Context, cfg *config.Config) (services.Scorer, closer, error) {
	if cfg.Scorer.Provider == config.ScorerGemini {
		client, err := gemini.NewClient(ctx, cfg.GeminiClient.APIKey, cfg.GeminiClient.Model)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
	return vader.NewScorer(), func() error { return nil }, nil
}

// application 是各子命令共用的元件
type application struct {
	cfg      *config.Config
	store    services.LogStore
	analyzer *services.AnalyzeService
	closers  []closer
}

// newApplication 依設定建立 LogStore 與 AnalyzeService；migrate 為 true 時先執行遷移
func newApplication(ctx context.Context, opts *rootOptions, migrate bool) (*application, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := runMigrations(cfg); err != nil {
			return nil, err
		}
	}

	app := &application{cfg: cfg}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "初始化紀錄儲存失敗")
	}
	app.store = store
	app.closers = append(app.closers, store.Close)

	scorer, closeScorer, err := newScorer(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, errors.Wrap(err, "初始化評分器失敗")
	}
	app.closers = append(app.closers, closeScorer)

	keywords, err := rake.NewExtractor(cfg.Keywords.Language, rake.WithMaxPhraseWords(cfg.Keywords.MaxPhraseWords))
	if err != nil {
		app.Close()
		return nil, errors.Wrap(err, "初始化關鍵字擷取器失敗")
	}

	var language services.LanguageDetector
	if cfg.Pipeline.DetectLanguage {
		language = langdetect.NewDetector(0)
	}

	analyzer, err := services.NewAnalyzeService(scorer, keywords, language, store, services.Options{
		DetectLanguage:      cfg.Pipeline.DetectLanguage,
		TrackCharacterCount: cfg.Pipeline.TrackCharacterCount,
		DefaultUser:         cfg.Pipeline.DefaultUser,
		LanguageMinLength:   cfg.Pipeline.LanguageMinLength,
	})
	if err != nil {
		app.Close()
		return nil, errors.Wrap(err, "初始化分析服務失敗")
	}
	app.analyzer = analyzer
	return app, nil
}

// Close 依建立的相反順序釋放資源
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zap.S().Warnf("釋放資源時發生錯誤: %v", err)
		}
	}
	a.closers = nil
}
