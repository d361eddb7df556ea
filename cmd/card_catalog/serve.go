package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/api"
)

const (
	serverReadTimeout      = 15 * time.Second
	serverWriteTimeout     = 60 * time.Second
	serverIdleTimeout      = 120 * time.Second
	defaultGracefulTimeout = 30 * time.Second

	rateLimitCleanupInterval = time.Minute
	rateLimitStaleAfter      = 10 * time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	var (
		address   string
		syncFirst bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog HTTP API",
		Long:  "Starts the HTTP API. With --sync the remote catalog is checked once at startup.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				a.settings.Server.Address = address
			}
			return a.serve(syncFirst)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides server.address)")
	cmd.Flags().BoolVar(&syncFirst, "sync", false, "sync the catalog from the remote feed at startup")
	return cmd
}

func (a *app) serve(syncFirst bool) error {
	eng, err := a.openEngine()
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	if syncFirst {
		jobID, err := eng.SyncAsync(false)
		if err != nil {
			a.logger.Warn("startup sync not started", zap.Error(err))
		} else {
			a.logger.Info("startup sync started", zap.String("job_id", jobID))
		}
	}

	if !a.settings.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	var wg sync.WaitGroup

	var limiter *api.ClientRateLimiter
	if a.settings.Server.RateLimit > 0 {
		limiter = api.NewClientRateLimiter(a.settings.Server.RateLimit, a.settings.Server.RateBurst)
		limiter.StartCleanup(ctx, &wg, rateLimitCleanupInterval, rateLimitStaleAfter)
	}

	httpLogger := a.logger.Named("http")
	router := gin.New()
	router.Use(
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(httpLogger),
		api.RecoveryMiddleware(httpLogger),
		api.CORSMiddleware(),
		api.RateLimitMiddleware(limiter),
		api.RequestSizeLimitMiddleware(a.settings.Server.MaxBodyBytes),
	)
	api.SetupRoutes(router, eng, eng.Recorder().Handler())

	server := &http.Server{
		Addr:         a.settings.Server.Address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening",
			zap.String("address", server.Addr),
			zap.String("backend", a.settings.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		a.logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	stop()
	wg.Wait()
	if err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	a.logger.Info("server shutdown complete")
	return nil
}
