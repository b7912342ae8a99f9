package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuspulse/moodmeter-service/internal/app"
	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/config"
	"github.com/campuspulse/moodmeter-service/internal/domain"
	"github.com/campuspulse/moodmeter-service/internal/repository"
	"github.com/campuspulse/moodmeter-service/internal/tools/common"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "moodmeter-server",
		Short:         "Anonymous mentoring mood check-in service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return common.LoadEnvFile(envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file (existing env wins)")
	cmd.AddCommand(newServeCommand(), newDispatchCommand(), newMigrateCommand())
	return cmd
}

func setupLoggerAndConfig(ctx context.Context) (*config.Config, *slog.Logger, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := setupLoggerAndConfig(ctx)
			if err != nil {
				return err
			}
			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", cfg.HTTPAddr, "profile", cfg.Profile)
				errCh <- a.Server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := a.Server.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown failed", "error", err)
			}
			return a.Close(shutdownCtx)
		},
	}
}

// newDispatchCommand runs one reminder pass and exits, for cron
// environments that prefer a process over the HTTP trigger.
func newDispatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run one reminder dispatch pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := setupLoggerAndConfig(ctx)
			if err != nil {
				return err
			}
			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = a.Close(closeCtx)
			}()

			id := repository.Identity{Email: "scheduler", Role: authz.RoleAdmin}
			report, err := a.Dispatcher.Run(ctx, id, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Printf("attempted=%d sent=%d failed=%d\n", report.Attempted, report.Sent, report.Failed)
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := setupLoggerAndConfig(ctx)
			if err != nil {
				return err
			}
			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = a.Close(closeCtx)
			}()

			if err := a.Scope.DB().WithContext(ctx).AutoMigrate(
				&domain.Community{},
				&domain.Mentor{},
				&domain.Reason{},
				&domain.KeyringEntry{},
				&domain.UserLink{},
				&domain.Session{},
				&domain.MoodEvent{},
			); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return nil
		},
	}
}
