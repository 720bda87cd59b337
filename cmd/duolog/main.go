// duolog serves an unattended two-persona AI dialogue behind a small
// observation API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hupe1980/duolog"
	"github.com/hupe1980/duolog/config"
	"github.com/hupe1980/duolog/logging"
	"github.com/hupe1980/duolog/scheduler"
	"github.com/hupe1980/duolog/server"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger(nil).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:          logging.ParseLevel(cfg.LogLevel),
		Format:         cfg.LogFormat,
		Output:         os.Stdout,
		ConversationID: duolog.DefaultConversationID,
	})

	mdl, err := duolog.NewModelFromConfig(cfg)
	if err != nil {
		logger.Error("failed to build model backend", "error", err)
		os.Exit(1)
	}
	info := mdl.Info()
	logger.Info("model backend ready", "provider", info.Provider, "model", info.Name)

	var srv *server.Server
	eng, err := duolog.New(mdl, func(o *duolog.Options) {
		o.Logger = logger
		o.MaxTurns = cfg.MaxTurns
		o.OnChange = func(snap scheduler.Snapshot) {
			if srv != nil {
				srv.Broadcast(snap)
			}
		}
	})
	if err != nil {
		logger.Error("failed to wire engine", "error", err)
		os.Exit(1)
	}
	srv = server.New(eng, logger.WithComponent("server"))

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoStart {
		eng.Start(ctx)
		logger.Info("conversation auto-started")
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	eng.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
