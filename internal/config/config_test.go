package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "config")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.LogStore.Policy != PolicyAppend {
		t.Errorf("policy = %q, want %q", cfg.LogStore.Policy, PolicyAppend)
	}
	if !cfg.Pipeline.DetectLanguage || !cfg.Pipeline.TrackCharacterCount {
		t.Error("optional pipeline stages should default to enabled")
	}
	if cfg.Pipeline.DefaultUser != "default_user" {
		t.Errorf("defaultUser = %q", cfg.Pipeline.DefaultUser)
	}
	if cfg.Pipeline.LanguageMinLength != 10 {
		t.Errorf("languageMinLength = %d, want 10", cfg.Pipeline.LanguageMinLength)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should validate, got %v", errs)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
appName: test-app
database:
  driver: csv
  path: /tmp/log.csv
logStore:
  policy: dedup
pipeline:
  detectLanguage: false
  defaultUser: bergersam
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir, "config")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "test-app" {
		t.Errorf("appName = %q", cfg.AppName)
	}
	if cfg.Database.Driver != DriverCSV || cfg.Database.Path != "/tmp/log.csv" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.LogStore.Policy != PolicyDedup {
		t.Errorf("policy = %q", cfg.LogStore.Policy)
	}
	if cfg.Pipeline.DetectLanguage {
		t.Error("detectLanguage should be false")
	}
	if !cfg.Pipeline.TrackCharacterCount {
		t.Error("trackCharacterCount should keep its default")
	}
	if cfg.Pipeline.DefaultUser != "bergersam" {
		t.Errorf("defaultUser = %q", cfg.Pipeline.DefaultUser)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{Driver: "oracle"},
		LogStore:  LogStoreConfig{Policy: "merge"},
		Scorer:    ScorerConfig{Provider: ScorerGemini},
		Pipeline:  PipelineConfig{DefaultUser: " ", LanguageMinLength: -1},
		Server:    ServerConfig{MaxUploadMB: 0},
		Scheduler: SchedulerConfig{Enabled: true},
	}
	errs := cfg.Validate()
	if len(errs) != 7 {
		t.Fatalf("expected 7 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateMySQLRequiresHostAndName(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: DriverMySQL, Host: "db"},
		LogStore: LogStoreConfig{Policy: PolicyDedup},
		Scorer:   ScorerConfig{Provider: ScorerVader},
		Pipeline: PipelineConfig{DefaultUser: "u"},
		Server:   ServerConfig{MaxUploadMB: 1},
	}
	if errs := cfg.Validate(); len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	cfg.Database.DBName = "sentiment"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
