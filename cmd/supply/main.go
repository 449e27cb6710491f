package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ctcscan/supplyx/app/audit"
	"github.com/ctcscan/supplyx/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := audit.Initialize(logger)
	if err := app.Run(ctx); err != nil {
		logger.Error("Supply audit failed", zap.Error(err))
		os.Exit(1)
	}
}
