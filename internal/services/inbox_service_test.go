package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInboxRunMovesFiles(t *testing.T) {
	dir := t.TempDir()
	store := &memoryStore{}
	svc := newService(t, &fakeScorer{polarity: 0.3}, fakeKeywords{}, &fakeLanguage{code: "en"}, store, DefaultOptions())
	inbox, err := NewInboxService(svc, dir, "inbox_user")
	if err != nil {
		t.Fatalf("NewInboxService: %v", err)
	}

	writeFile(t, filepath.Join(dir, "a.csv"), "text\nfirst\nsecond\n")
	writeFile(t, filepath.Join(dir, "b.csv"), "comment\nno text column\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	result, err := inbox.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Files != 1 || result.Failed != 1 || result.Records != 2 {
		t.Errorf("result = %+v", result)
	}
	if len(store.records) != 2 || store.records[0].User != "inbox_user" {
		t.Errorf("records = %+v", store.records)
	}
	if _, err := os.Stat(filepath.Join(dir, "processed", "a.csv")); err != nil {
		t.Errorf("a.csv not moved to processed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "failed", "b.csv")); err != nil {
		t.Errorf("b.csv not moved to failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.md")); err != nil {
		t.Errorf("non-tabular file should stay in place: %v", err)
	}

	again, err := inbox.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Files != 0 || len(store.records) != 2 {
		t.Errorf("second run should find nothing: %+v", again)
	}
}

func TestInboxRunRejectsConcurrentRun(t *testing.T) {
	svc := newService(t, &fakeScorer{}, fakeKeywords{}, &fakeLanguage{}, &memoryStore{}, DefaultOptions())
	inbox, err := NewInboxService(svc, t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewInboxService: %v", err)
	}
	inbox.running.Lock()
	defer inbox.running.Unlock()
	if _, err := inbox.Run(context.Background()); !errors.Is(err, ErrInboxBusy) {
		t.Errorf("err = %v, want ErrInboxBusy", err)
	}
}

type cancellingScorer struct {
	cancel context.CancelFunc
}

func (c cancellingScorer) Score(ctx context.Context, text string) (float64, float64, error) {
	c.cancel()
	return 0, 0, ctx.Err()
}

func TestInboxRunCancelledLeavesFileInInbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()
	svc := newService(t, cancellingScorer{cancel: cancel}, fakeKeywords{}, &fakeLanguage{}, &memoryStore{}, DefaultOptions())
	inbox, err := NewInboxService(svc, dir, "")
	if err != nil {
		t.Fatalf("NewInboxService: %v", err)
	}
	writeFile(t, filepath.Join(dir, "a.csv"), "text\nfirst\n")

	result, err := inbox.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.csv")); err != nil {
		t.Errorf("a.csv should stay in the inbox: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "failed", "a.csv")); !os.IsNotExist(err) {
		t.Errorf("a.csv should not be moved to failed: %v", err)
	}
}
