package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redirector/internal/app"
	"redirector/internal/config"
	"redirector/internal/logger"

	"go.uber.org/zap"
)

func main() {
	c := config.NewConfig()
	if err := config.Init(c); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	sugar, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(c, sugar); err != nil {
		sugar.Errorw("redirector failed", "error", err)
		_ = sugar.Sync()
		os.Exit(1)
	}
	_ = sugar.Sync()
}

func run(c *config.Config, sugar *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	st, err := app.SelectStorage(ctx, c, sugar)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			sugar.Errorw("storage close", "error", err)
		}
	}()

	svc := app.NewService(c, st, sugar)
	defer func() { _ = svc.Close() }()

	server := app.CreateServer(c, app.NewRouter(c, svc, sugar), sugar)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
