package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"sentiment-admin/internal/web/handlers"
	"sentiment-admin/internal/web/templates"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewGenerateStaticCommand(opts *rootOptions) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "generate-static",
		Short: "將分析紀錄頁面輸出為靜態 HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app, err := newApplication(ctx, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			records, err := app.analyzer.ListLog(ctx)
			if err != nil {
				return err
			}
			tpl, err := templates.Load(app.cfg.Server.TemplatePath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return errors.Wrapf(err, "無法創建輸出目錄 '%s'", outputDir)
			}
			outputFile := filepath.Join(outputDir, "index.html")
			file, err := os.Create(outputFile)
			if err != nil {
				return errors.Wrapf(err, "無法創建輸出檔案 '%s'", outputFile)
			}
			defer file.Close()

			data := handlers.PageData{Title: "Analysis Log", Records: records, GeneratedAt: time.Now()}
			if err := tpl.ExecuteTemplate(file, "log.html", data); err != nil {
				return errors.Wrap(err, "無法生成靜態檔案")
			}
			zap.S().Infof("已生成靜態檔案: %s (%d 筆紀錄)", outputFile, len(records))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "static", "輸出目錄")
	return cmd
}
