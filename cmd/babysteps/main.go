package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"babysteps/internal/backend"
	"babysteps/internal/cache"
	"babysteps/internal/config"
	"babysteps/internal/core"
	apphttp "babysteps/internal/http"
	"babysteps/internal/log"
	"babysteps/internal/services"
	"babysteps/internal/session"
	"babysteps/internal/state"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.LevelFromEnv(),
		Component: log.ComponentApp,
		JSON:      os.Getenv("LOG_FORMAT") == "json",
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := backend.New(ctx, backend.Config{
		Type:    backend.Type(cfg.DataBackend),
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		logger.Error("Backend initialization failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	sessions, err := session.NewStore(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Session store initialization failed",
			log.FieldError, err.Error(), "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer sessions.Close()

	states := state.NewRegistry(cfg.SessionMaxIdle, time.Hour)

	categories := cache.NewLRUCache[[]core.Category](cfg.CacheSize, cfg.CacheTTL)

	finance := services.NewFinanceService(be, logger)
	milestone := services.NewMilestoneService(be, finance, logger)

	svcs := apphttp.Services{
		Auth:      services.NewAuthService(be, sessions, states, logger),
		Profile:   services.NewProfileService(be, logger),
		Finance:   finance,
		Expense:   services.NewExpenseService(be, categories, logger),
		Dashboard: services.NewDashboardService(be, milestone, logger),
		Milestone: milestone,
	}

	srv, err := apphttp.NewServer(cfg, svcs, sessions, states, logger)
	if err != nil {
		logger.Error("Server initialization failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	// Periodic purge of idle sessions.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sessions.PurgeStale(ctx, cfg.SessionMaxIdle)
				if err != nil {
					logger.WarnContext(ctx, "Session purge failed", log.FieldError, err.Error())
					continue
				}
				if n > 0 {
					logger.InfoContext(ctx, "Stale sessions purged", "purged", n)
				}
			}
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	}()

	logger.Info("Starting server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"data_backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
