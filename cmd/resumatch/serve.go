package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP matching service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "address to listen on (default :8080)")
	mustBindPFlag(serveCmd, "addr", "addr")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, log, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error("Failed to close engine", zap.Error(err))
		}
	}()

	settings := eng.Settings()
	if !settings.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestIDMiddleware(), api.CORSMiddleware(), api.RequestLoggerMiddleware(log))
	api.SetupRoutes(router, api.NewAPI(eng, eng.Jobs(), settings.MaxUploadBytes, log))

	server := &http.Server{
		Addr:              settings.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", settings.Addr), zap.String("data_dir", settings.DataDir))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
