// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bisectbroker/internal/api"
	"bisectbroker/internal/config"
	"bisectbroker/internal/job"
	"bisectbroker/internal/logging"
	"bisectbroker/internal/metrics"
	"bisectbroker/internal/middleware"
	"bisectbroker/internal/persistence"
)

func main() {
	cfg, err := config.Load(flag.NewFlagSet("bisectd", flag.ExitOnError), os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	store := job.NewStore()

	if cfg.SnapshotPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		snaps, err := persistence.Load(ctx, cfg.SnapshotPath)
		cancel()
		if err != nil {
			logger.Error("failed to load snapshot, starting empty", "path", cfg.SnapshotPath, "error", err)
		} else if len(snaps) > 0 {
			store.Restore(snaps)
			logger.Info("restored snapshot", "path", cfg.SnapshotPath, "jobs", len(snaps))
		}
	}

	reg := metrics.New()
	handler := &api.Handler{Store: store, Metrics: reg}
	mux := api.NewRouter(handler, reg)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	defer limiter.Close()

	var h http.Handler = mux
	h = limiter.Middleware(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.Metrics(reg)(h)
	h = middleware.Correlation(h)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	if cfg.SnapshotPath != "" {
		go runSnapshotLoop(store, cfg.SnapshotPath, cfg.SnapshotInterval, done, logger)
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(done)

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.SnapshotPath != "" {
		if err := persistence.Save(ctx, store, cfg.SnapshotPath); err != nil {
			logger.Error("final snapshot save failed", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func runSnapshotLoop(store *job.Store, path string, interval time.Duration, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := persistence.Save(ctx, store, path); err != nil {
				logger.Error("periodic snapshot save failed", "error", err)
			}
			cancel()
		case <-done:
			return
		}
	}
}
