package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/menuquiz/internal/catalog"
	"github.com/abhisek/menuquiz/internal/logger"
	"github.com/abhisek/menuquiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}

		svc, err := newServices(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		log := logger.Get()
		srv := server.New(server.Options{
			Catalog:           catalog.Default(),
			Generator:         svc.generator,
			Preparer:          svc.preparer,
			Usage:             svc.store.EventRepo(),
			Env:               cfg.Env,
			Version:           version,
			MaxUploadBytes:    cfg.Server.MaxUploadBytes,
			UploadConcurrency: cfg.Server.UploadConcurrency,
			AllowAllOrigins:   !cfg.IsProduction(),
			Log:               log,
		})

		errc := make(chan error, 1)
		go func() {
			errc <- srv.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Error("shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Listen port (overrides config)")
}
