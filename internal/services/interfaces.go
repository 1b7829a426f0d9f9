package services

import (
	"context"

	"sentiment-admin/internal/models"
)

// Scorer 回傳文本的極性 (-1..1) 與主觀性 (0..1) 分數
type Scorer interface {
	Score(ctx context.Context, text string) (polarity float64, subjectivity float64, err error)
}

// KeywordExtractor 回傳依排名排序的關鍵片語
type KeywordExtractor interface {
	Extract(text string) []string
}

// LanguageDetector 回傳語言代碼；無法判斷時回傳錯誤
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// LogStore 定義分析紀錄的持久化操作。
// AppendOrUpdate 回傳紀錄 ID，並把寫入後的 total_uses 回填到 record。
type LogStore interface {
	AppendOrUpdate(ctx context.Context, record *models.AnalysisRecord) (int64, error)
	ListAll(ctx context.Context) ([]models.AnalysisRecord, error)
	Close() error
}
