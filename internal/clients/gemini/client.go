package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ScorePrompt 要求模型只回傳兩個分數
const ScorePrompt = `You are a sentiment scoring service. Read the text that follows and respond with a single JSON object and nothing else:
{"polarity": <number from -1.0 (very negative) to 1.0 (very positive), 0 when neutral>,
 "subjectivity": <number from 0.0 (fully objective) to 1.0 (fully subjective)>}`

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client 結構用於與 Gemini API 互動
type Client struct {
	sdk   *genai.Client
	model generator
}

type scoreResponse struct {
	Polarity     *float64 `json:"polarity"`
	Subjectivity *float64 `json:"subjectivity"`
}

// NewClient 建立一個 Gemini 客戶端實例
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API Key 不得為空")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
		zap.S().Warnf("[Gemini Client] 未提供模型名稱，使用預設值: %s", modelName)
	}

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "無法建立 Gemini GenAI SDK 客戶端")
	}
	model := sdk.GenerativeModel(modelName)
	var genConfig genai.GenerationConfig
	genConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig = genConfig
	zap.S().Infof("[Gemini Client] 評分模型 '%s' 初始化成功。", modelName)

	return &Client{sdk: sdk, model: model}, nil
}

func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// cleanJSONString 去除 markdown 區塊標記與控制字元，取出最外層的 JSON 物件
func cleanJSONString(rawResponse string) string {
	cleaned := strings.TrimSpace(rawResponse)
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(cleaned, fence) {
			cleaned = strings.TrimSuffix(strings.TrimPrefix(cleaned, fence), "```")
			break
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	if first, last := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	if !utf8.ValidString(cleaned) {
		zap.S().Warn("[Gemini Client] 回應包含無效的 UTF-8 字元，嘗試替換...")
		cleaned = strings.ToValidUTF8(cleaned, "")
	}

	var sb strings.Builder
	for _, r := range cleaned {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimPrefix(strings.TrimSpace(sb.String()), "\uFEFF")
}

// responseText 串接第一個候選回應的文字部分
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("Gemini API 回應無效或為空 (nil response or no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			for _, rating := range candidate.SafetyRatings {
				zap.S().Warnf("[Gemini Client] 安全評級 - Category: %s, Probability: %s", rating.Category, rating.Probability)
			}
			return "", errors.Errorf("Gemini API 回應內容被阻止，原因: %s", candidate.FinishReason.String())
		}
		return "", errors.Errorf("Gemini API 回應無效或為空 (no content parts, FinishReason: %s)", candidate.FinishReason.String())
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		} else {
			zap.S().Warnf("[Gemini Client] 收到非預期的 Part 類型: %T", part)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("Gemini API 回傳的內容為空")
	}
	return b.String(), nil
}

// Score 實作 services.Scorer
func (c *Client) Score(ctx context.Context, text string) (float64, float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, 0, errors.New("要分析的文本內容不得為空")
	}
	zap.S().Debugf("[Gemini Client] 開始評分 (長度: %d 字元): %s...", utf8.RuneCountInString(text), firstNChars(text, 50))

	resp, err := c.model.GenerateContent(ctx, genai.Text(ScorePrompt), genai.Text(text))
	if err != nil {
		return 0, 0, errors.Wrap(err, "Gemini API GenerateContent 失敗")
	}
	raw, err := responseText(resp)
	if err != nil {
		return 0, 0, err
	}
	cleaned := cleanJSONString(raw)

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		zap.S().Errorf("[Gemini Client] 無法解析回應 JSON: %v\n%s", err, cleaned)
		return 0, 0, errors.Wrap(err, "無法將 Gemini API 回應解析為 JSON")
	}
	if parsed.Polarity == nil || parsed.Subjectivity == nil {
		return 0, 0, errors.Errorf("Gemini API 回應缺少 polarity 或 subjectivity: %s", cleaned)
	}
	return clamp(*parsed.Polarity, -1, 1), clamp(*parsed.Subjectivity, 0, 1), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstNChars(s string, n int) string {
	runes := []rune(s)
	if n > 0 && len(runes) > n {
		return string(runes[:n])
	}
	return s
}
