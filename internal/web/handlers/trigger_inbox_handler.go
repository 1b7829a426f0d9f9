package handlers

import (
	"context"
	"net/http"
	"sync"

	"sentiment-admin/internal/services"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TriggerInboxHandler 手動觸發收件匣分析，在背景執行
type TriggerInboxHandler struct {
	inbox        InboxRunner
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.Mutex
	isProcessing bool
	closed       bool
	done         chan struct{}
}

// NewTriggerInboxHandler 建立 TriggerInboxHandler 實例
func NewTriggerInboxHandler(inbox InboxRunner) *TriggerInboxHandler {
	if inbox == nil {
		zap.S().Panic("TriggerInboxHandler：InboxRunner 不得為空")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TriggerInboxHandler{inbox: inbox, ctx: ctx, cancel: cancel}
}

// ServeHTTP 實現 http.Handler 介面
func (h *TriggerInboxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("[TriggerInboxHandler] 收到請求: %s %s 來自 %s", r.Method, r.URL.Path, r.RemoteAddr)
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "服務正在關閉，不接受新的觸發。"})
		return
	}
	if h.isProcessing {
		h.mu.Unlock()
		zap.S().Warn("[TriggerInboxHandler] 收件匣分析已在進行中，拒絕新的觸發。")
		writeJSON(w, http.StatusConflict, map[string]string{"error": "收件匣分析已在進行中，請稍候。"})
		return
	}
	h.isProcessing = true
	done := make(chan struct{})
	h.done = done
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			h.isProcessing = false
			h.mu.Unlock()
			close(done)
			zap.S().Info("[TriggerInboxHandler] 手動觸發的收件匣任務 goroutine 已結束。")
		}()

		result, err := h.inbox.Run(h.ctx)
		switch {
		case errors.Is(err, services.ErrInboxBusy):
			zap.S().Warn("[TriggerInboxHandler] 排程的收件匣分析正在執行，本次觸發未處理任何檔案。")
		case err != nil:
			zap.S().Errorf("[TriggerInboxHandler] 手動觸發的收件匣分析失敗: %v", err)
		default:
			zap.S().Infof("[TriggerInboxHandler] 手動觸發的收件匣分析完成 (檔案: %d, 紀錄: %d)。", result.Files, result.Records)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "收件匣分析已觸發，正在背景執行。請稍後查看紀錄。"})
}

// Shutdown 停止接受新的觸發並等待背景任務結束；ctx 逾時後取消任務，
// 收件匣會在目前的檔案結束後停止
func (h *TriggerInboxHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	done := h.done
	h.mu.Unlock()
	defer h.cancel()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		zap.S().Warn("[TriggerInboxHandler] 等待收件匣任務逾時，取消任務。")
		h.cancel()
		<-done
		return errors.Wrap(ctx.Err(), "等待手動觸發的收件匣任務結束逾時")
	}
}

// Wait 等待目前的背景任務結束
func (h *TriggerInboxHandler) Wait() {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done != nil {
		<-done
	}
}
