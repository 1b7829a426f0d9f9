// Package rake 以 RAKE (Rapid Automatic Keyword Extraction) 找出文本的關鍵片語。
package rake

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// StopWordFunc 判斷一個小寫單字是否為停用詞
type StopWordFunc func(word string) bool

// Option 調整 Extractor 的行為
type Option func(*Extractor)

// WithStopWords 以自訂的停用詞判斷取代預設詞表
func WithStopWords(fn StopWordFunc) Option {
	return func(e *Extractor) {
		e.isStopWord = fn
	}
}

// WithMaxPhraseWords 捨棄超過 n 個單字的片語；n <= 0 表示不限制
func WithMaxPhraseWords(n int) Option {
	return func(e *Extractor) {
		e.maxWords = n
	}
}

// Extractor 實作 services.KeywordExtractor
type Extractor struct {
	tokenizer  *sentences.DefaultSentenceTokenizer
	isStopWord StopWordFunc
	maxWords   int
}

// LibraryStopWords 回傳使用 bbalet/stopwords 詞表的判斷函式
func LibraryStopWords(langCode string) StopWordFunc {
	return func(word string) bool {
		return strings.TrimSpace(stopwords.CleanString(word, langCode, false)) == ""
	}
}

// NewExtractor 建立 Extractor；預設使用 language 對應的停用詞表
func NewExtractor(language string, opts ...Option) (*Extractor, error) {
	if language == "" {
		language = "en"
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, errors.Wrap(err, "建立斷句器失敗")
	}
	e := &Extractor{
		tokenizer:  tokenizer,
		isStopWord: LibraryStopWords(language),
	}
	for _, opt := range opts {
		opt(e)
	}
	zap.S().Debugf("[RAKE] 初始化完成 (language: %s, maxPhraseWords: %d)", language, e.maxWords)
	return e, nil
}

// Extract 回傳依分數由高到低排序的片語，同分時依首次出現順序
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var phrases [][]string
	for _, sentence := range e.tokenizer.Tokenize(text) {
		phrases = append(phrases, e.candidatePhrases(sentence.Text)...)
	}
	if len(phrases) == 0 {
		return nil
	}

	frequency := make(map[string]float64)
	degree := make(map[string]float64)
	for _, phrase := range phrases {
		for _, word := range phrase {
			frequency[word]++
			degree[word] += float64(len(phrase))
		}
	}

	type ranked struct {
		phrase string
		score  float64
		order  int
	}
	seen := make(map[string]bool)
	var candidates []ranked
	for _, phrase := range phrases {
		joined := strings.Join(phrase, " ")
		if seen[joined] {
			continue
		}
		seen[joined] = true
		var score float64
		for _, word := range phrase {
			score += degree[word] / frequency[word]
		}
		candidates = append(candidates, ranked{phrase: joined, score: score, order: len(candidates)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.phrase
	}
	return out
}

// candidatePhrases 以停用詞與標點切出片語
func (e *Extractor) candidatePhrases(sentence string) [][]string {
	var phrases [][]string
	var current []string
	flush := func() {
		if len(current) > 0 && (e.maxWords <= 0 || len(current) <= e.maxWords) {
			phrases = append(phrases, current)
		}
		current = nil
	}

	for _, token := range tokenize(sentence) {
		if token == "" {
			flush()
			continue
		}
		if e.isStopWord(token) {
			flush()
			continue
		}
		current = append(current, token)
	}
	flush()
	return phrases
}

// tokenize 回傳小寫單字；標點以空字串表示片語邊界
func tokenize(sentence string) []string {
	var tokens []string
	var b strings.Builder
	emit := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(sentence) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			emit()
		default:
			emit()
			tokens = append(tokens, "")
		}
	}
	emit()
	for i, tok := range tokens {
		tokens[i] = strings.Trim(tok, "'-")
	}
	return tokens
}
