package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/tabular"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var text, file, user string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析單一文本或表格檔，寫入紀錄並以 JSON 輸出結果",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text == "") == (file == "") {
				return errors.New("必須指定 --text 或 --file 其中之一")
			}
			ctx := context.Background()
			app, err := newApplication(ctx, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			var records []models.AnalysisRecord
			if text != "" {
				record, err := app.analyzer.Analyze(ctx, text, user)
				if err != nil {
					return err
				}
				records = append(records, *record)
			} else {
				f, err := os.Open(file)
				if err != nil {
					return errors.Wrapf(err, "開啟檔案 '%s' 失敗", file)
				}
				defer f.Close()
				table, err := tabular.Read(f, filepath.Base(file))
				if err != nil {
					return err
				}
				records, err = app.analyzer.AnalyzeTable(ctx, table, user)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "要分析的文本")
	cmd.Flags().StringVarP(&file, "file", "f", "", "含 text 欄位的 CSV / XLSX 檔案")
	cmd.Flags().StringVarP(&user, "user", "u", "", "紀錄的使用者 (預設為 pipeline.defaultUser)")
	return cmd
}
