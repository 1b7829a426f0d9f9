package models

import (
	"time"
)

// Sentiment 定義情緒分類
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Subjectivity 定義主觀性分類
type Subjectivity string

const (
	SubjectivitySubjective Subjectivity = "Subjective"
	SubjectivityObjective  Subjectivity = "Objective"
)

// LanguageUnknown 是語言偵測失敗或文本過短時記錄的值
const LanguageUnknown = "Unknown"

// DefaultUser 是呼叫端未提供使用者時的預設值
const DefaultUser = "default_user"

// TimestampLayout 是 date_time 欄位的儲存格式
const TimestampLayout = "2006-01-02 15:04:05"

// AnalysisRecord 對應 analysis_logs 資料表，每筆分析過的文本一筆
type AnalysisRecord struct {
	ID             int64          `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Text           string         `json:"text"`
	Sentiment      Sentiment      `json:"sentiment"`
	Subjectivity   Subjectivity   `json:"subjectivity"`
	Keywords       string         `json:"keywords"`
	Language       JsonNullString `json:"language"`
	CharacterCount JsonNullInt64  `json:"character_count"`
	User           string         `json:"user"`
	TotalUses      int64          `json:"total_uses"`
}

// FormattedTimestamp 回傳 date_time 欄位格式的時間字串
func (r AnalysisRecord) FormattedTimestamp() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.Format(TimestampLayout)
}
