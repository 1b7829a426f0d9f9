package vader

import (
	"context"
	"testing"
)

func TestScorePolarity(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	tests := []struct {
		text string
		sign int
	}{
		{"I love this product", 1},
		{"This is a terrible, awful experience", -1},
		{"The box is on the table", 0},
	}
	for _, tt := range tests {
		polarity, subjectivity, err := s.Score(ctx, tt.text)
		if err != nil {
			t.Fatalf("Score(%q): %v", tt.text, err)
		}
		switch {
		case tt.sign > 0 && polarity <= 0:
			t.Errorf("Score(%q) polarity = %f, want > 0", tt.text, polarity)
		case tt.sign < 0 && polarity >= 0:
			t.Errorf("Score(%q) polarity = %f, want < 0", tt.text, polarity)
		case tt.sign == 0 && polarity != 0:
			t.Errorf("Score(%q) polarity = %f, want 0", tt.text, polarity)
		}
		if subjectivity < 0 || subjectivity > 1 {
			t.Errorf("Score(%q) subjectivity = %f out of range", tt.text, subjectivity)
		}
	}
}

func TestScoreEmptyText(t *testing.T) {
	polarity, subjectivity, err := NewScorer().Score(context.Background(), "")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if polarity != 0 || subjectivity != 0 {
		t.Errorf("empty text = (%f, %f), want (0, 0)", polarity, subjectivity)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**great** job", "great job"},
		{"see [the docs](https://example.com/x) now", "see the docs now"},
		{"visit https://example.com today", "visit today"},
		{"fish & chips", "fish & chips"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewScorer().Score(ctx, "hello"); err == nil {
		t.Error("expected context error")
	}
}
