package rake

import (
	"reflect"
	"testing"
)

func fixedStopWords(words ...string) StopWordFunc {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return func(word string) bool { return set[word] }
}

func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	opts = append([]Option{WithStopWords(fixedStopWords("i", "this", "is", "a", "the", "and"))}, opts...)
	e, err := NewExtractor("en", opts...)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func TestExtractRanksByDegreeOverFrequency(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract("Fast delivery and great customer service. Great service!")
	want := []string{"great customer service", "great service", "fast delivery"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractTiesKeepFirstOccurrence(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract("I love this product")
	want := []string{"love", "product"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractMaxPhraseWords(t *testing.T) {
	e := newTestExtractor(t, WithMaxPhraseWords(2))
	got := e.Extract("Fast delivery and great customer service. Great service!")
	want := []string{"fast delivery", "great service"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractDeduplicatesPhrases(t *testing.T) {
	e := newTestExtractor(t)
	got := e.Extract("Great value. Great value.")
	if len(got) != 1 || got[0] != "great value" {
		t.Errorf("Extract = %q", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	e := newTestExtractor(t)
	for _, text := range []string{"", "   ", "this is the", "!!!"} {
		if got := e.Extract(text); len(got) != 0 {
			t.Errorf("Extract(%q) = %q, want empty", text, got)
		}
	}
}

func TestTokenizeMarksPunctuation(t *testing.T) {
	got := tokenize("Don't stop, it's fine")
	want := []string{"don't", "stop", "", "it's", "fine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize = %q, want %q", got, want)
	}
}

func TestLibraryStopWords(t *testing.T) {
	isStop := LibraryStopWords("en")
	if !isStop("the") {
		t.Error("'the' should be an English stop word")
	}
	if isStop("product") {
		t.Error("'product' should not be a stop word")
	}
}
