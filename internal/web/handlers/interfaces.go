package handlers

import (
	"context"
	"io"
	"os"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/services"
	"sentiment-admin/internal/tabular"
)

// Analyzer 定義了處理器需要的分析操作，由 services.AnalyzeService 實作
type Analyzer interface {
	Analyze(ctx context.Context, text string, user string) (*models.AnalysisRecord, error)
	AnalyzeTable(ctx context.Context, table *tabular.Table, user string) ([]models.AnalysisRecord, error)
	ListLog(ctx context.Context) ([]models.AnalysisRecord, error)
}

// LogReader 只讀取分析紀錄
type LogReader interface {
	ListLog(ctx context.Context) ([]models.AnalysisRecord, error)
}

// UploadStore 保存上傳檔案，由 uploads.FileSystemStorage 實作
type UploadStore interface {
	Save(originalFileName string, r io.Reader) (string, error)
	Open(relativePath string) (*os.File, error)
}

// InboxRunner 由 services.InboxService 實作
type InboxRunner interface {
	Run(ctx context.Context) (services.InboxResult, error)
}
