package scheduler

import (
	"context"

	"sentiment-admin/internal/services"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// InboxRunner 由 services.InboxService 實作
type InboxRunner interface {
	Run(ctx context.Context) (services.InboxResult, error)
}

// InboxJob 是一個排程任務，用於分析收件匣中的表格檔
type InboxJob struct {
	inbox InboxRunner
}

// NewInboxJob 建立一個 InboxJob
func NewInboxJob(inbox InboxRunner) *InboxJob {
	return &InboxJob{inbox: inbox}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *InboxJob) Run() {
	zap.S().Info("[Scheduler] 執行排程任務 - 收件匣分析...")
	result, err := j.inbox.Run(context.Background())
	switch {
	case errors.Is(err, services.ErrInboxBusy):
		zap.S().Warn("[Scheduler] 收件匣分析仍在進行中，略過本次排程。")
	case err != nil:
		zap.S().Errorf("[Scheduler] 收件匣分析排程任務執行失敗: %v", err)
	default:
		zap.S().Infof("[Scheduler] 收件匣分析排程任務執行完成 (檔案: %d, 紀錄: %d)。", result.Files, result.Records)
	}
}
