package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiment-admin/internal/scheduler"
	"sentiment-admin/internal/services"
	"sentiment-admin/internal/storage/uploads"
	"sentiment-admin/internal/web"
	"sentiment-admin/internal/web/handlers"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "啟動 HTTP 服務 (含資料庫遷移與收件匣排程)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts)
		},
	}
}

func serve(opts *rootOptions) error {
	app, err := newApplication(context.Background(), opts, true)
	if err != nil {
		return err
	}
	defer app.Close()
	cfg := app.cfg

	uploadStore, err := uploads.NewFileSystemStorage(cfg.Server.UploadDir)
	if err != nil {
		return errors.Wrap(err, "初始化上傳目錄失敗")
	}

	var inboxRunner handlers.InboxRunner
	if cfg.Scheduler.Enabled {
		zap.S().Info("排程器已在設定檔中啟用，正在初始化...")
		inbox, err := services.NewInboxService(app.analyzer, cfg.Scheduler.InboxPath, cfg.Scheduler.User)
		if err != nil {
			return errors.Wrap(err, "初始化收件匣服務失敗")
		}
		inboxRunner = inbox
		appScheduler, err := scheduler.NewScheduler(inbox, cfg.Scheduler.InboxCronSpec)
		if err != nil {
			return err
		}
		appScheduler.Start()
		defer appScheduler.Stop()
	} else {
		zap.S().Info("排程器已在設定檔中禁用。")
	}

	router, err := web.SetupRouter(cfg, app.analyzer, uploadStore, inboxRunner)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zap.S().Infof("HTTP 伺服器正在監聽 %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zap.S().Info("收到關閉訊號，正在關閉應用程式...")
	case err := <-serverErr:
		if err != nil {
			return errors.Wrap(err, "HTTP 伺服器監聽失敗")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	shutdownErr := server.Shutdown(ctx)
	// 手動觸發的收件匣任務必須在關閉紀錄儲存前結束
	if err := router.Shutdown(ctx); err != nil {
		zap.S().Warnf("等待收件匣任務時發生錯誤: %v", err)
	}
	if shutdownErr != nil {
		return errors.Wrap(shutdownErr, "HTTP 伺服器優雅關閉失敗")
	}
	zap.S().Info("HTTP 伺服器已關閉。")
	return nil
}
