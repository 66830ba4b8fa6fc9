package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frostmod/internal/bot"
	"frostmod/internal/classifier"
	"frostmod/internal/config"
	"frostmod/internal/cooldown"
	"frostmod/internal/eventlog"
	"frostmod/internal/inference"
	"frostmod/internal/search"
	"frostmod/internal/settings"
	"frostmod/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	settingsStore := settings.New(store, time.Duration(cfg.Settings.CacheTTLSeconds)*time.Second)
	events := eventlog.New(store, logger)

	gate := cooldown.NewGate(map[string]cooldown.Window{
		"ask":              {Duration: time.Duration(cfg.Cooldowns.AskSeconds) * time.Second, Max: 1},
		"search":           {Duration: time.Duration(cfg.Cooldowns.SearchSeconds) * time.Second, Max: 1},
		"warn":             {Duration: time.Duration(cfg.Cooldowns.WarnSeconds) * time.Second, Max: 1},
		"filter":           {Duration: time.Duration(cfg.Cooldowns.FilterSeconds) * time.Second, Max: 1},
		"analyze":          {Duration: time.Duration(cfg.Cooldowns.AnalyzeSeconds) * time.Second, Max: cfg.Cooldowns.AnalyzeMax},
		"message_analysis": {Duration: time.Duration(cfg.Cooldowns.AnalyzeSeconds) * time.Second, Max: cfg.Cooldowns.AnalyzeMax},
	}, cooldown.Window{Duration: time.Duration(cfg.Cooldowns.DefaultSeconds) * time.Second, Max: 1})

	var inferenceClient *inference.Client
	var cls classifier.Classifier = classifier.NewKeyword()
	gateScoped := false
	if cfg.HuggingFaceToken != "" {
		inferenceClient = inference.NewClient(cfg.HuggingFaceToken, logger)
		cls = classifier.NewScored(inferenceClient, logger)
		gateScoped = true
		logger.Info("scored content classifier enabled")
	} else {
		logger.Info("keyword content classifier enabled")
	}

	var searchClient *search.Client
	if cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != "" {
		searchClient = search.NewClient(cfg.GoogleAPIKey, cfg.GoogleCSEID, logger)
	}

	botSvc, err := bot.New(cfg, logger, store, settingsStore, cls, gateScoped, gate, events, inferenceClient, searchClient)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	var server *http.Server
	if cfg.Health.Enabled {
		server = &http.Server{Addr: cfg.Health.Addr}
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("health endpoint enabled", zap.String("addr", cfg.Health.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
