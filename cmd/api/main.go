package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/crisis"
	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
	"github.com/zhouzirui/neuroguard/backend/internal/config"
	"github.com/zhouzirui/neuroguard/backend/internal/handler"
	"github.com/zhouzirui/neuroguard/backend/internal/service/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/service/classifier"
	"github.com/zhouzirui/neuroguard/backend/internal/service/session"
)

func main() {
	// .env may set LOG_LEVEL, so it is loaded before the logger is built.
	envErr := godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))})))
	if envErr != nil {
		slog.Warn("failed to load .env file, continuing with system environment variables only", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	emotionClassifier, err := classifier.FromConfig(ctx, cfg.Classifier)
	if err != nil {
		if !cfg.Classifier.Fallback {
			slog.Error("failed to initialize classifier", "provider", cfg.Classifier.Provider, "error", err)
			os.Exit(1)
		}
		slog.Warn("failed to initialize classifier, using keyword heuristic", "provider", cfg.Classifier.Provider, "error", err)
		emotionClassifier = classifier.Instrument(classifier.NewHeuristic())
	}
	slog.Info("emotion classifier ready", "classifier", emotionClassifier.Name())

	aggregator := risk.New(cfg.Risk.NegativeEmotions...)
	detector := crisis.New(cfg.Risk.CrisisPhrases...)
	slog.Info("risk lexicon loaded",
		"negative_labels", len(aggregator.NegativeLabels()),
		"crisis_phrases", len(detector.Phrases()))

	sessions := session.NewService(cfg.Session.HistoryLimit)
	checkins := checkin.NewService(sessions, emotionClassifier, aggregator, detector)

	router := handler.NewRouter(sessions, checkins)

	startServer(ctx, cfg.Server, router)
}

func logLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("NeuroGuard backend listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
