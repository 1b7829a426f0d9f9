package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/storage/sqlstore"
)

func record(text, user string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		Timestamp:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local),
		Text:         text,
		Sentiment:    models.SentimentNeutral,
		Subjectivity: models.SubjectivityObjective,
		User:         user,
	}
}

func TestOpenCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.csv")
	if _, err := Open(path, sqlstore.PolicyAppend); err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != strings.Join(Header, ",") {
		t.Errorf("file = %q", got)
	}
}

func TestAppendPolicyAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	store, err := Open(path, sqlstore.PolicyAppend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	first := record("Hello, \"quoted\" world", "alice")
	first.Language = models.NewJsonNullString("en")
	first.CharacterCount = models.NewJsonNullInt64(22)
	for _, r := range []*models.AnalysisRecord{first, record("Hello, \"quoted\" world", "alice"), record("x", "bob")} {
		if _, err := store.AppendOrUpdate(ctx, r); err != nil {
			t.Fatalf("AppendOrUpdate: %v", err)
		}
	}

	reopened, err := Open(path, sqlstore.PolicyAppend)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, _ := reopened.ListAll(ctx)
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	wantUses := []int64{1, 2, 1}
	for i, r := range records {
		if r.ID != int64(i+1) {
			t.Errorf("record %d id = %d", i, r.ID)
		}
		if r.TotalUses != wantUses[i] {
			t.Errorf("record %d TotalUses = %d, want %d", i, r.TotalUses, wantUses[i])
		}
	}
	if records[0].Text != "Hello, \"quoted\" world" {
		t.Errorf("text = %q", records[0].Text)
	}
	if records[0].Language.String != "en" || records[0].CharacterCount.Int64 != 22 {
		t.Errorf("optional columns = %+v / %+v", records[0].Language, records[0].CharacterCount)
	}
	if records[1].Language.Valid || records[1].CharacterCount.Valid {
		t.Error("empty optional columns should read back as NULL")
	}
	if records[0].FormattedTimestamp() != "2024-05-01 09:00:00" {
		t.Errorf("timestamp = %s", records[0].FormattedTimestamp())
	}

	next := record("new", "bob")
	id, err := reopened.AppendOrUpdate(ctx, next)
	if err != nil {
		t.Fatalf("AppendOrUpdate after reopen: %v", err)
	}
	if id != 4 || next.TotalUses != 2 {
		t.Errorf("id = %d, TotalUses = %d", id, next.TotalUses)
	}
}

func TestDedupPolicyRewritesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	store, err := Open(path, sqlstore.PolicyDedup)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := record("repeat me", "alice")
		id, err := store.AppendOrUpdate(ctx, r)
		if err != nil {
			t.Fatalf("AppendOrUpdate: %v", err)
		}
		if id != 1 || r.TotalUses != int64(i+1) {
			t.Errorf("submission %d: id = %d, TotalUses = %d", i+1, id, r.TotalUses)
		}
	}
	if _, err := store.AppendOrUpdate(ctx, record("repeat me", "bob")); err != nil {
		t.Fatalf("AppendOrUpdate: %v", err)
	}

	reopened, err := Open(path, sqlstore.PolicyDedup)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, _ := reopened.ListAll(ctx)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].TotalUses != 3 || records[1].TotalUses != 1 {
		t.Errorf("TotalUses = %d, %d", records[0].TotalUses, records[1].TotalUses)
	}
}

func TestOpenRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i,j\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, sqlstore.PolicyAppend); err == nil {
		t.Fatal("expected header mismatch error")
	}
}

func TestDedupMatchesMultilineTextAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	ctx := context.Background()
	texts := []string{"line one\r\nline two", `C:\temp\r\n is a path`, "lone\rcarriage"}

	store, err := Open(path, sqlstore.PolicyDedup)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, text := range texts {
		if _, err := store.AppendOrUpdate(ctx, record(text, "u")); err != nil {
			t.Fatalf("AppendOrUpdate(%q): %v", text, err)
		}
	}

	reopened, err := Open(path, sqlstore.PolicyDedup)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, _ := reopened.ListAll(ctx)
	if len(records) != len(texts) {
		t.Fatalf("len(records) = %d, want %d", len(records), len(texts))
	}
	for i, text := range texts {
		if records[i].Text != text {
			t.Errorf("record %d text = %q, want %q", i, records[i].Text, text)
		}
	}

	again := record(texts[0], "u")
	id, err := reopened.AppendOrUpdate(ctx, again)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	records, _ = reopened.ListAll(ctx)
	if id != 1 || again.TotalUses != 2 || len(records) != len(texts) {
		t.Errorf("resubmit: id = %d, TotalUses = %d, records = %d", id, again.TotalUses, len(records))
	}
}

func TestOpenEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := Open(path, sqlstore.PolicyAppend)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.AppendOrUpdate(context.Background(), record("hello", "u")); err != nil {
		t.Fatalf("AppendOrUpdate: %v", err)
	}

	reopened, err := Open(path, sqlstore.PolicyAppend)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	records, _ := reopened.ListAll(context.Background())
	if len(records) != 1 || records[0].Text != "hello" {
		t.Errorf("records = %+v", records)
	}
}
