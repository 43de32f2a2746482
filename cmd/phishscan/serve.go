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

	"github.com/spf13/cobra"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API: POST /analyze, GET /analyses, GET /ws/analyze,
/healthz, /metrics and the swagger UI under /swagger/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		logger := newLogger(os.Stdout)

		application, err := app.New(cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		srv, err := server.NewServer(server.Config{
			ListenAddr:     cfg.Server.Addr,
			RateLimit:      cfg.Server.RateLimit,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, application)
		if err != nil {
			return err
		}
		httpServer := srv.HTTPServer()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", logging.Field{Key: "addr", Value: httpServer.Addr})
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		grace := config.Duration(cfg.Server.ShutdownGrace, 10*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
