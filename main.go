package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"homeprice/artifact"
	"homeprice/config"
	qhttp "homeprice/http"
	"homeprice/logging"
	"homeprice/predict"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config
	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if !found {
		logger.Warn("config file not found, using defaults", zap.String("path", *configPath))
	}

	// 2. Load artifacts; missing files leave the service up but unready
	loader := artifact.NewLoader(artifact.Options{
		ColumnsPath:            cfg.Artifacts.ColumnsPath(),
		ModelPath:              cfg.Artifacts.ModelPath(),
		FallbackOnCorruptModel: cfg.Artifacts.FallbackOnCorruptModel,
	}, logger)
	estimator, err := predict.NewEstimator(loader, cfg.Predict.CacheSize, logger)
	if err != nil {
		logger.Fatal("failed to build estimator", zap.Error(err))
	}
	loader.Subscribe(estimator.Purge)
	if _, err := loader.Load(); err != nil {
		logger.Warn("artifacts incomplete", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Artifacts.Watch {
		watcher, err := artifact.NewWatcher(loader, cfg.Artifacts.WatchDebounce, logger)
		if err != nil {
			logger.Warn("artifact watch disabled", zap.Error(err))
		} else {
			go watcher.Run(ctx)
		}
	}
	go reloadOnHangup(ctx, loader, logger)

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, qhttp.NewHandlers(estimator, logger), logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func reloadOnHangup(ctx context.Context, loader *artifact.Loader, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("SIGHUP received, reloading artifacts")
			if _, err := loader.Load(); err != nil {
				logger.Warn("artifacts incomplete", zap.Error(err))
			}
		}
	}
}
