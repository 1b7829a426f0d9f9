package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "將資料庫結構遷移到最新版本",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := runMigrations(cfg); err != nil {
				return err
			}
			zap.S().Info("資料庫遷移完成。")
			return nil
		},
	}
}
