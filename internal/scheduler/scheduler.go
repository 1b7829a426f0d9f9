package scheduler

import (
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 結構
type Scheduler struct {
	cron     *cron.Cron
	inboxJob *InboxJob
}

// NewScheduler 以六欄位 (含秒) 的 Cron 表達式註冊收件匣任務
func NewScheduler(inbox InboxRunner, inboxCronSpec string) (*Scheduler, error) {
	if inbox == nil {
		return nil, errors.New("Scheduler：InboxRunner 不得為空")
	}
	if inboxCronSpec == "" {
		return nil, errors.New("Scheduler：未提供收件匣任務的 Cron 表達式")
	}
	c := cron.New(cron.WithSeconds())
	inboxJob := NewInboxJob(inbox)
	if _, err := c.AddJob(inboxCronSpec, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(inboxJob)); err != nil {
		return nil, errors.Wrapf(err, "無法新增收件匣任務到排程器 (spec: %s)", inboxCronSpec)
	}
	zap.S().Infof("[Scheduler] 收件匣任務已註冊，排程：%s", inboxCronSpec)
	return &Scheduler{cron: c, inboxJob: inboxJob}, nil
}

// Start 非阻塞啟動
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.S().Info("[Scheduler] 排程器已非阻塞啟動。")
}

// Stop 等待執行中的任務結束，最多 10 秒
func (s *Scheduler) Stop() {
	zap.S().Info("[Scheduler] 正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		zap.S().Info("[Scheduler] 排程器已優雅停止，所有運行中任務已完成。")
	case <-time.After(10 * time.Second):
		zap.S().Warn("[Scheduler] 排程器停止超時，可能仍有任務在執行。")
	}
}

// Entries 回傳已註冊任務的數量
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
