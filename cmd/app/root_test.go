package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sentiment-admin/internal/models"
)

func writeConfig(t *testing.T, driver string) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "log."+map[string]string{"csv": "csv", "sqlite": "db"}[driver])
	content := "appName: test\n" +
		"database:\n  driver: " + driver + "\n  path: " + dbPath + "\n" +
		"logStore:\n  policy: dedup\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommandText(t *testing.T) {
	for _, driver := range []string{"csv", "sqlite"} {
		dir := writeConfig(t, driver)
		var records []models.AnalysisRecord
		for i := 0; i < 2; i++ {
			out, err := runCommand(t, "--config-dir", dir, "analyze", "--text", "I love this product", "--user", "cli")
			if err != nil {
				t.Fatalf("%s: analyze: %v", driver, err)
			}
			if err := json.Unmarshal([]byte(out), &records); err != nil {
				t.Fatalf("%s: decode %q: %v", driver, out, err)
			}
		}
		if len(records) != 1 {
			t.Fatalf("%s: records = %+v", driver, records)
		}
		r := records[0]
		if r.Sentiment != models.SentimentPositive || r.User != "cli" || r.TotalUses != 2 {
			t.Errorf("%s: record = %+v", driver, r)
		}
		if !r.Language.Valid || !r.CharacterCount.Valid || r.CharacterCount.Int64 != 19 {
			t.Errorf("%s: optional fields = %+v / %+v", driver, r.Language, r.CharacterCount)
		}
	}
}

func TestAnalyzeCommandFileWithoutTextColumn(t *testing.T) {
	dir := writeConfig(t, "csv")
	input := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(input, []byte("body\nhello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "--config-dir", dir, "analyze", "--file", input); err == nil {
		t.Fatal("expected missing text column error")
	}
}

func TestAnalyzeCommandRequiresOneInput(t *testing.T) {
	dir := writeConfig(t, "csv")
	if _, err := runCommand(t, "--config-dir", dir, "analyze"); err == nil {
		t.Error("expected error without --text or --file")
	}
	if _, err := runCommand(t, "--config-dir", dir, "analyze", "--text", "a", "--file", "b.csv"); err == nil {
		t.Error("expected error with both --text and --file")
	}
}

func TestGenerateStatic(t *testing.T) {
	dir := writeConfig(t, "sqlite")
	if _, err := runCommand(t, "--config-dir", dir, "analyze", "--text", "Static pages are great"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	out := filepath.Join(t.TempDir(), "static")
	if _, err := runCommand(t, "--config-dir", dir, "generate-static", "--out", out); err != nil {
		t.Fatalf("generate-static: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Static pages are great") {
		t.Errorf("static page missing record: %s", data)
	}
}

func TestMigrateCommand(t *testing.T) {
	dir := writeConfig(t, "sqlite")
	for i := 0; i < 2; i++ {
		if _, err := runCommand(t, "--config-dir", dir, "migrate"); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
}
