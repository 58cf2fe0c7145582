package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codeberg.org/roomchat/server/internal/config"
	"codeberg.org/roomchat/server/internal/logger"
)

func main() {
	flags, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		logger.Fatal("failed to parse command line", "error", err)
	}

	var envFiles []string
	if flags.EnvFile != "" {
		envFiles = append(envFiles, flags.EnvFile)
	}

	cfg, err := config.LoadEnvironmentVariables(envFiles...)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if err := flags.Apply(cfg); err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	logger.Configure(cfg.Environment)
	logger.Info("starting roomchat server",
		"environment", cfg.Environment,
		"block_size", cfg.MessageBlockSize,
		"broadcast_scope", cfg.BroadcastScope,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	srv.Start()

	servers := []*http.Server{newHTTPServer(cfg.Port, srv.router)}
	if srv.brokerRouter != nil {
		servers = append(servers, newHTTPServer(cfg.BrokerPort, srv.brokerRouter))
	}

	var (
		wg   sync.WaitGroup
		errc = make(chan error, len(servers))
	)

	for _, httpServer := range servers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.Info("server listening", "addr", httpServer.Addr)

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("%s: %w", httpServer.Addr, err)
			}
		}()
	}

	select {
	case err := <-errc:
		logger.ErrorErr(err, "server failed, shutting down")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// stop accepting new requests and connections first
	for _, httpServer := range servers {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "addr", httpServer.Addr, "error", err)
		}
	}

	wg.Wait()

	srv.Shutdown(shutdownCtx)

	logger.Info("server stopped")
}

func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
