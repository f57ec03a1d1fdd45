package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"partsstore/internal/config"
	"partsstore/internal/http/handlers"
	applog "partsstore/internal/log"
	"partsstore/internal/repos"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.LogLevel, cfg.Env, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	logger := applog.L()
	defer func() { _ = logger.Sync() }()
	logger.Info("config loaded", cfg.Fields()...)

	if cfg.SlotBackend == config.SlotFile {
		if err := os.MkdirAll(cfg.SlotDir, 0o755); err != nil {
			logger.Fatal("create slot dir", zap.String("dir", cfg.SlotDir), zap.Error(err))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("open db", zap.String("dsn", cfg.DBDSN), zap.Error(err))
	}
	defer db.Close()

	app := handlers.NewApp(db, cfg)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
