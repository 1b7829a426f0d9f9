package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/tabular"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNoInput           = errors.New("no input provided")
	ErrMissingTextColumn = errors.New("table has no text column")
)

// Options 控制分析流程的可選階段
type Options struct {
	DetectLanguage      bool
	TrackCharacterCount bool
	DefaultUser         string
	LanguageMinLength   int
}

// DefaultOptions 對應功能最完整的設定
func DefaultOptions() Options {
	return Options{
		DetectLanguage:      true,
		TrackCharacterCount: true,
		DefaultUser:         models.DefaultUser,
		LanguageMinLength:   10,
	}
}

// AnalyzeService 把一段文本轉成分析紀錄並寫入 LogStore
type AnalyzeService struct {
	scorer   Scorer
	keywords KeywordExtractor
	language LanguageDetector
	store    LogStore
	opts     Options
	now      func() time.Time
}

// NewAnalyzeService 建立 AnalyzeService 實例；DetectLanguage 關閉時 language 可為 nil
func NewAnalyzeService(
	scorer Scorer,
	keywords KeywordExtractor,
	language LanguageDetector,
	store LogStore,
	opts Options,
) (*AnalyzeService, error) {
	if scorer == nil {
		return nil, errors.New("AnalyzeService：Scorer 不得為空")
	}
	if keywords == nil {
		return nil, errors.New("AnalyzeService：KeywordExtractor 不得為空")
	}
	if store == nil {
		return nil, errors.New("AnalyzeService：LogStore 不得為空")
	}
	if opts.DetectLanguage && language == nil {
		return nil, errors.New("AnalyzeService：啟用語言偵測時 LanguageDetector 不得為空")
	}
	if strings.TrimSpace(opts.DefaultUser) == "" {
		opts.DefaultUser = models.DefaultUser
	}
	zap.S().Debugf("[AnalyzeService] 初始化完成 (語言偵測: %t, 字元數: %t)", opts.DetectLanguage, opts.TrackCharacterCount)
	return &AnalyzeService{
		scorer:   scorer,
		keywords: keywords,
		language: language,
		store:    store,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// ClassifySentiment 以 0 為界；剛好為 0 時為 Neutral
func ClassifySentiment(polarity float64) models.Sentiment {
	switch {
	case polarity > 0:
		return models.SentimentPositive
	case polarity < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ClassifySubjectivity 以 0.5 為界；0.5 本身為 Objective
func ClassifySubjectivity(score float64) models.Subjectivity {
	if score > 0.5 {
		return models.SubjectivitySubjective
	}
	return models.SubjectivityObjective
}

// JoinKeywords 以 ", " 串接排名後的片語
func JoinKeywords(phrases []string) string {
	return strings.Join(phrases, ", ")
}

// DetectLanguage 在文本過短或偵測失敗時回傳 Unknown
func DetectLanguage(detector LanguageDetector, text string, minLength int) string {
	if utf8.RuneCountInString(text) < minLength {
		return models.LanguageUnknown
	}
	lang, err := detector.Detect(text)
	if err != nil || lang == "" {
		if err != nil {
			zap.S().Debugf("[AnalyzeService] 語言偵測失敗，記錄為 Unknown: %v", err)
		}
		return models.LanguageUnknown
	}
	return lang
}

func (s *AnalyzeService) resolveUser(user string) string {
	if strings.TrimSpace(user) == "" {
		return s.opts.DefaultUser
	}
	return user
}

// Analyze 分析單一文本並寫入 LogStore
func (s *AnalyzeService) Analyze(ctx context.Context, text string, user string) (*models.AnalysisRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoInput
	}
	user = s.resolveUser(user)

	polarity, subjectivity, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "情緒評分失敗")
	}

	record := &models.AnalysisRecord{
		Timestamp:    s.now(),
		Text:         text,
		Sentiment:    ClassifySentiment(polarity),
		Subjectivity: ClassifySubjectivity(subjectivity),
		Keywords:     JoinKeywords(s.keywords.Extract(text)),
		User:         user,
	}
	if s.opts.DetectLanguage {
		record.Language = models.NewJsonNullString(DetectLanguage(s.language, text, s.opts.LanguageMinLength))
	}
	if s.opts.TrackCharacterCount {
		record.CharacterCount = models.NewJsonNullInt64(int64(utf8.RuneCountInString(text)))
	}

	id, err := s.store.AppendOrUpdate(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, "寫入分析紀錄失敗")
	}
	record.ID = id
	zap.S().Debugf("[AnalyzeService] 文本分析完成 (ID: %d, 使用者: %s, 情緒: %s, 主觀性: %s, 次數: %d)",
		id, user, record.Sentiment, record.Subjectivity, record.TotalUses)
	return record, nil
}

// AnalyzeBatch 依輸入順序逐筆分析；空白文本略過，結果不去重
func (s *AnalyzeService) AnalyzeBatch(ctx context.Context, texts []string, user string) ([]models.AnalysisRecord, error) {
	results := make([]models.AnalysisRecord, 0, len(texts))
	var skipped int
	for i, text := range texts {
		record, err := s.Analyze(ctx, text, user)
		if errors.Is(err, ErrNoInput) {
			skipped++
			zap.S().Warnf("[AnalyzeService] 批次第 %d 筆為空白，略過。", i+1)
			continue
		}
		if err != nil {
			return results, errors.Wrapf(err, "批次第 %d 筆分析失敗", i+1)
		}
		results = append(results, *record)
	}
	zap.S().Infof("[AnalyzeService] 批次分析完成。成功: %d, 略過: %d", len(results), skipped)
	return results, nil
}

// AnalyzeTable 先檢查 text 欄位，缺少時整批拒絕，不處理任何一列
func (s *AnalyzeService) AnalyzeTable(ctx context.Context, table *tabular.Table, user string) ([]models.AnalysisRecord, error) {
	if table == nil {
		return nil, ErrMissingTextColumn
	}
	schema := table.Validate()
	if !schema.Valid {
		zap.S().Warnf("[AnalyzeService] 表格缺少欄位 %v，整批拒絕。", schema.MissingColumns)
		return nil, ErrMissingTextColumn
	}
	return s.AnalyzeBatch(ctx, table.Column(schema.TextColumnIndex), user)
}

// ListLog 回傳完整的分析紀錄
func (s *AnalyzeService) ListLog(ctx context.Context) ([]models.AnalysisRecord, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "讀取分析紀錄失敗")
	}
	return records, nil
}
