package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/NguyenAn0808/online-auction-sub001/internal/config"
	"github.com/NguyenAn0808/online-auction-sub001/internal/database"
	"github.com/NguyenAn0808/online-auction-sub001/internal/engine"
	"github.com/NguyenAn0808/online-auction-sub001/internal/notify"
	"github.com/NguyenAn0808/online-auction-sub001/internal/scheduler"
	"github.com/NguyenAn0808/online-auction-sub001/internal/store"
	"github.com/NguyenAn0808/online-auction-sub001/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/auctiond.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting auctiond",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"scheduler_interval", cfg.Scheduler.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	st := store.New(pool, cfg.Store.Timeout)

	// Start the notification dispatcher. Deliveries are best effort;
	// the LogSender stands in for the real notification collaborator.
	dispatcher := notify.NewDispatcher(
		notify.Config{BufferSize: cfg.Notifier.BufferSize},
		notify.LogSender{Logger: logger},
		logger,
	)
	if err := dispatcher.Start(ctx); err != nil {
		logger.Error("failed to start dispatcher", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		dispatcher.Stop(shutdownCtx)
	}()

	// Bidding service
	svc := engine.New(engine.Config{
		AutoExtendThreshold: cfg.AutoExtend.Threshold,
		AutoExtendExtension: cfg.AutoExtend.Extension,
	}, st, dispatcher, logger)

	// Lifecycle scheduler
	sched := scheduler.New(scheduler.Config{
		Interval:    cfg.Scheduler.Interval,
		Concurrency: cfg.Scheduler.Concurrency,
	}, st, dispatcher, logger)

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		sched.Stop(shutdownCtx)
	}()

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(st, svc, sched, dispatcher),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("auctiond running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Graceful shutdown of health server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("auctiond stopped")
}

// createHealthHandler creates the HTTP handler for health checks and
// competition debugging.
func createHealthHandler(st *store.Store, svc *engine.Service, sched *scheduler.Scheduler, dispatcher *notify.Dispatcher) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := st.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		schedStats := sched.Stats()
		health.Components["scheduler"] = map[string]int64{
			"ticks":          schedStats.Ticks,
			"activated":      schedStats.Activated,
			"closed":         schedStats.Closed,
			"finalized":      schedStats.Finalized,
			"no_bid_notices": schedStats.NoBidNotices,
			"errors":         schedStats.Errors,
		}

		notifyStats := dispatcher.Stats()
		health.Components["notifier"] = map[string]int64{
			"enqueued":  notifyStats.Enqueued,
			"delivered": notifyStats.Delivered,
			"failed":    notifyStats.Failed,
			"dropped":   notifyStats.Dropped,
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/competition", func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := uuid.Parse(r.URL.Query().Get("auction"))
		if err != nil {
			http.Error(w, "invalid or missing auction parameter", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		state, err := svc.CompetitionState(ctx, auctionID)
		if err != nil {
			if errors.Is(err, engine.ErrAuctionNotFound) {
				http.Error(w, "auction not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(state)
	})

	return mux
}
