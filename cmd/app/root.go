package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootOptions struct {
	configDir  string
	configName string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "sentiment-admin",
		Short:         "文本情緒分析與紀錄服務",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "./configs", "設定檔目錄")
	rootCmd.PersistentFlags().StringVar(&opts.configName, "config-name", "config", "設定檔名稱 (不含副檔名)")

	rootCmd.AddCommand(
		NewServeCommand(opts),
		NewMigrateCommand(opts),
		NewAnalyzeCommand(opts),
		NewGenerateStaticCommand(opts),
	)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		zap.S().Info("使用 'serve' 子命令啟動 HTTP 服務")
		cmd.Help()
	}
	rootCmd.Version = version
	return rootCmd
}
