package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)
	defer func() { _ = zap.L().Sync() }()

	if err := NewRootCommand().Execute(); err != nil {
		zap.S().Errorf("執行失敗: %v", err)
		os.Exit(1)
	}
}
