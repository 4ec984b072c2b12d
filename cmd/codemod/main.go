package main

import (
	"log/slog"
	"os"

	"codemod/internal/slogutil"
)

func main() {
	logger := slogutil.NewLogger(os.Stderr, slog.LevelInfo)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
