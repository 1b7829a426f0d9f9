package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverCSV    = "csv"

	PolicyAppend = "append"
	PolicyDedup  = "dedup"

	ScorerVader  = "vader"
	ScorerGemini = "gemini"
)

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	UploadDir    string `mapstructure:"uploadDir"`
	MaxUploadMB  int64  `mapstructure:"maxUploadMB"`
	TemplatePath string `mapstructure:"templatePath"`
}

// DatabaseConfig 同時描述 sqlite / mysql / csv 三種後端，
// sqlite 與 csv 只使用 Path。
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

type LogStoreConfig struct {
	Policy string `mapstructure:"policy"`
}

// PipelineConfig 控制分析流程的可選階段
type PipelineConfig struct {
	DetectLanguage      bool   `mapstructure:"detectLanguage"`
	TrackCharacterCount bool   `mapstructure:"trackCharacterCount"`
	DefaultUser         string `mapstructure:"defaultUser"`
	LanguageMinLength   int    `mapstructure:"languageMinLength"`
}

type ScorerConfig struct {
	Provider string `mapstructure:"provider"`
}

type GeminiClientConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type KeywordsConfig struct {
	Language       string `mapstructure:"language"`
	MaxPhraseWords int    `mapstructure:"maxPhraseWords"`
}

// SchedulerConfig 收件匣排程：定期分析丟進 InboxPath 的表格檔
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	InboxCronSpec string `mapstructure:"inboxCronSpec"`
	InboxPath     string `mapstructure:"inboxPath"`
	User          string `mapstructure:"user"`
}

type Config struct {
	AppName      string             `mapstructure:"appName"`
	Log          LogConfig          `mapstructure:"log"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	LogStore     LogStoreConfig     `mapstructure:"logStore"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	Scorer       ScorerConfig       `mapstructure:"scorer"`
	GeminiClient GeminiClientConfig `mapstructure:"geminiClient"`
	Keywords     KeywordsConfig     `mapstructure:"keywords"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "sentiment-admin")
	v.SetDefault("log.development", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.uploadDir", "uploads")
	v.SetDefault("server.maxUploadMB", 32)
	v.SetDefault("server.templatePath", "")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/sentiment_analysis.db")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbName", "")
	v.SetDefault("logStore.policy", PolicyAppend)
	v.SetDefault("pipeline.detectLanguage", true)
	v.SetDefault("pipeline.trackCharacterCount", true)
	v.SetDefault("pipeline.defaultUser", "default_user")
	v.SetDefault("pipeline.languageMinLength", 10)
	v.SetDefault("scorer.provider", ScorerVader)
	v.SetDefault("geminiClient.apiKey", "")
	v.SetDefault("geminiClient.model", "gemini-1.5-flash-latest")
	v.SetDefault("keywords.language", "en")
	v.SetDefault("keywords.maxPhraseWords", 0)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.inboxCronSpec", "0 */5 * * * *")
	v.SetDefault("scheduler.inboxPath", "./inbox")
	v.SetDefault("scheduler.user", "")
}

// Load 讀取設定檔；找不到設定檔時使用預設值和環境變數。
// 工作目錄下的 .env 會先載入到環境變數中。
func Load(configPath string, configName string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.Load(".env"); err != nil {
			return nil, errors.Wrap(err, "載入 .env 失敗")
		}
	}

	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			zap.S().Warn("找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, errors.Wrap(err, "讀取設定檔時發生錯誤")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "無法解析設定檔到結構")
	}

	if cfg.Scorer.Provider == ScorerGemini && cfg.GeminiClient.APIKey == "" {
		zap.S().Warn("Gemini API Key 未設定！")
	}
	zap.S().Debugf("設定載入成功 (driver: %s, policy: %s)", cfg.Database.Driver, cfg.LogStore.Policy)
	return &cfg, nil
}

// Validate 收集所有設定錯誤
func (c *Config) Validate() []error {
	var errs = make([]error, 0)
	switch c.Database.Driver {
	case DriverSQLite, DriverCSV:
		if c.Database.Path == "" {
			errs = append(errs, errors.Errorf("database.path 不得為空 (driver: %s)", c.Database.Driver))
		}
	case DriverMySQL:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("mysql 需要設定 database.host 與 database.dbName"))
		}
	default:
		errs = append(errs, errors.Errorf("不支援的資料庫驅動程式: %s", c.Database.Driver))
	}
	if c.LogStore.Policy != PolicyAppend && c.LogStore.Policy != PolicyDedup {
		errs = append(errs, errors.Errorf("不支援的 logStore.policy: %s", c.LogStore.Policy))
	}
	switch c.Scorer.Provider {
	case ScorerVader:
	case ScorerGemini:
		if c.GeminiClient.APIKey == "" {
			errs = append(errs, errors.New("scorer.provider 為 gemini 時必須設定 geminiClient.apiKey"))
		}
	default:
		errs = append(errs, errors.Errorf("不支援的 scorer.provider: %s", c.Scorer.Provider))
	}
	if strings.TrimSpace(c.Pipeline.DefaultUser) == "" {
		errs = append(errs, errors.New("pipeline.defaultUser 不得為空"))
	}
	if c.Pipeline.LanguageMinLength < 0 {
		errs = append(errs, errors.New("pipeline.languageMinLength 不得為負數"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("server.maxUploadMB 必須大於 0"))
	}
	if c.Scheduler.Enabled && (c.Scheduler.InboxCronSpec == "" || c.Scheduler.InboxPath == "") {
		errs = append(errs, errors.New("啟用排程器時必須設定 scheduler.inboxCronSpec 與 scheduler.inboxPath"))
	}
	return errs
}
