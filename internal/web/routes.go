package web

import (
	"context"
	"net/http"

	"sentiment-admin/internal/config"
	"sentiment-admin/internal/web/handlers"
	"sentiment-admin/internal/web/templates"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Router 是註冊好所有路由的 http.Handler，關閉時需呼叫 Shutdown 等待背景任務
type Router struct {
	http.Handler
	trigger *handlers.TriggerInboxHandler
}

// Shutdown 等待手動觸發的背景任務結束
func (r *Router) Shutdown(ctx context.Context) error {
	if r.trigger == nil {
		return nil
	}
	return r.trigger.Shutdown(ctx)
}

// SetupRouter 註冊所有 HTTP 路由。inbox 為 nil 時不提供手動觸發收件匣的路由。
func SetupRouter(appConfig *config.Config, analyzer handlers.Analyzer, uploads handlers.UploadStore, inbox handlers.InboxRunner) (*Router, error) {
	if analyzer == nil {
		return nil, errors.New("SetupRouter：Analyzer 不得為空")
	}
	tpl, err := templates.Load(appConfig.Server.TemplatePath)
	if err != nil {
		return nil, err
	}
	maxUploadBytes := appConfig.Server.MaxUploadMB << 20

	router := &Router{}
	mux := http.NewServeMux()
	mux.Handle("/", handlers.NewIndexHandler(tpl, appConfig.Pipeline.DefaultUser))
	mux.Handle("/analyze", handlers.NewAnalyzeHandler(analyzer, uploads, tpl, maxUploadBytes))
	mux.Handle("/log", handlers.NewLogHandler(analyzer, tpl))
	mux.Handle("/export", handlers.NewExportHandler(analyzer))
	mux.Handle("/api/analyze", handlers.NewAPIAnalyzeHandler(analyzer, maxUploadBytes))
	mux.Handle("/api/log", handlers.NewAPILogHandler(analyzer))
	mux.HandleFunc("/healthz", handlers.HealthHandler)

	if inbox != nil {
		router.trigger = handlers.NewTriggerInboxHandler(inbox)
		mux.Handle("/manual-inbox-analyze", router.trigger)
	} else {
		zap.S().Info("[Router] 收件匣未啟用，不註冊 /manual-inbox-analyze。")
	}

	zap.S().Info("[Router] HTTP 路由設定完成。")
	router.Handler = mux
	return router, nil
}
