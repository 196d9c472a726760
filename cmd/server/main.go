package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/agrovision/riceleaf-api/internal/classify"
	"github.com/agrovision/riceleaf-api/internal/config"
	"github.com/agrovision/riceleaf-api/internal/handlers"
	"github.com/agrovision/riceleaf-api/internal/history"
	"github.com/agrovision/riceleaf-api/internal/logger"
	"github.com/agrovision/riceleaf-api/internal/model"
	"github.com/agrovision/riceleaf-api/internal/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.MustNew(cfg)
	defer zlog.Sync()

	runtime := model.NewRuntime(zlog)
	defer runtime.Close()

	// Loading the model can take a while; the server comes up
	// immediately and rejects inference until the runtime is ready.
	go func() {
		zlog.Info("loading model", zap.String("path", cfg.ModelPath))
		if err := runtime.Load(cfg.ModelPath, cfg.MetadataPath); err != nil {
			zlog.Error("inference will be unavailable", zap.Error(err))
		}
	}()

	store, err := history.Open(cfg.DatabaseDSN, cfg.HistoryLimit)
	if err != nil {
		zlog.Fatal("failed to open history store", zap.Error(err))
	}

	pipeline := classify.NewService(runtime, cfg.TempDir, zlog)

	srv := server.New(cfg)
	srv.SetupRoutes(handlers.New(runtime, pipeline, store, zlog))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("server starting", zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		return srv.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
