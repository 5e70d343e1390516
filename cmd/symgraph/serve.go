// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symgraph/cache"
	"github.com/AleutianAI/symgraph/server"
	"github.com/AleutianAI/symgraph/telemetry"
)

var (
	flagPort          int
	flagCacheCapacity int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the symgraph HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()

		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.DefaultConfig())
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()

		store, err := openStore(logger)
		if err != nil {
			return err
		}
		defer store.Close()

		cached := cache.New(store, cache.WithCapacity(flagCacheCapacity))
		handlers := server.NewHandlers(cached, logger)
		router := server.NewRouter(handlers, flagDebug)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", flagPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("symgraph listening", slog.Int("port", flagPort))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().IntVar(&flagCacheCapacity, "cache-capacity", cache.DefaultCapacity,
		"Maximum number of cached crossref records")
}
