package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atmello/partscan/internal/api"
	"github.com/atmello/partscan/internal/config"
	"github.com/atmello/partscan/internal/database"
	"github.com/atmello/partscan/internal/detect"
	"github.com/atmello/partscan/internal/storage"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func main() {
	log, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
	}

	localStorage, err := storage.NewLocalStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer db.Close()

	historyRepo := database.NewHistoryRepository(db)
	partRepo := database.NewPartRepository(db)

	// Seed well-known class names so the inventory is never empty on
	// first run. Idempotent across restarts.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := partRepo.Seed(ctx, cfg.SeedParts); err != nil {
		cancel()
		log.Fatal("Failed to seed parts", zap.Error(err))
	}
	cancel()
	log.Info("inventory seeded", zap.Strings("parts", cfg.SeedParts))

	detector := detect.NewRemoteDetector(cfg.Detector.URL, cfg.Detector.Confidence)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := detector.Ping(pingCtx); err != nil {
		// Not fatal: the inference service may come up later; until then
		// uploads fail with a processing error.
		log.Warn("inference service not reachable", zap.String("url", cfg.Detector.URL), zap.Error(err))
	}
	pingCancel()

	app := &api.App{
		Storage:       localStorage,
		History:       historyRepo,
		Parts:         partRepo,
		Detector:      detector,
		MaxUploadSize: cfg.MaxUploadSize,
		TemplatesDir:  cfg.TemplatesDir,
		Log:           log,
	}

	router := api.NewRouter(app)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("server starting",
		zap.String("addr", addr),
		zap.String("data_dir", cfg.DataDir),
		zap.String("database", cfg.DatabasePath),
		zap.String("detector", cfg.Detector.URL),
		zap.Float64("confidence", cfg.Detector.Confidence),
		zap.Int64("max_upload_size", cfg.MaxUploadSize),
	)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
