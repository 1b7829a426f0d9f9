// Package vader 以 VADER 詞典計算文本的極性與主觀性。
package vader

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// Scorer 實作 services.Scorer
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// RemoveLinks 保留 markdown 連結的文字，移除裸網址
func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// PlainText 把 markdown 轉成 HTML 後去掉標籤，只留下文字
func PlainText(input string) string {
	input = RemoveLinks(input)
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := html.UnescapeString(tagPattern.ReplaceAllString(string(rendered), " "))
	return strings.Join(strings.Fields(text), " ")
}

// Score 回傳 compound 分數作為極性；主觀性為非中性詞彙所佔比例
func (s *Scorer) Score(ctx context.Context, text string) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	scores := s.analyzer.PolarityScores(PlainText(text))
	if scores.Positive+scores.Negative+scores.Neutral == 0 {
		return scores.Compound, 0, nil
	}
	return scores.Compound, clamp(1 - scores.Neutral), nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
