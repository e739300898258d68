package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/future-media/backend/internal/handlers"
	"github.com/anonto42/future-media/backend/internal/router"
	"github.com/anonto42/future-media/backend/internal/seed"
	"github.com/anonto42/future-media/backend/internal/validators"
	"github.com/anonto42/future-media/backend/pkg/config"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrateOnStart bool
	seedOptions    = seed.DefaultOptions()
	seedValue      uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if migrateOnStart {
			if err := a.db.Migrate(); err != nil {
				return err
			}
		}

		e := echo.New()
		e.HideBanner = true
		e.Validator = validators.NewValidator()
		e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(a.metrics)
		config.SetupMiddleware(e, a.metrics)
		router.SetupRoutes(e, a.services, a.tokens, router.Options{
			HealthChecks:   healthChecks(a),
			MetricsEnabled: a.cfg.MetricsEnabled,
		})

		errCh := make(chan error, 1)
		go func() {
			logger.Log.Info("Starting server", zap.String("port", a.cfg.Port), zap.String("env", a.cfg.Env))
			if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the relational schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.db.Migrate()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake users and content",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.cfg.IsProduction() {
			return errors.New("refusing to seed a production database")
		}
		if err := a.db.Migrate(); err != nil {
			return err
		}
		_, err = seed.NewSeeder(a.services, seedValue).SeedDev(cmd.Context(), seedOptions)
		return err
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Delete a user and everything they own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.services.Users.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Log.Info("User deleted", logger.WithUserID(args[0]))
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "Run schema migrations before serving")

	seedCmd.Flags().IntVar(&seedOptions.Users, "users", seedOptions.Users, "Number of users to create")
	seedCmd.Flags().IntVar(&seedOptions.PostsPerUser, "posts", seedOptions.PostsPerUser, "Posts per user")
	seedCmd.Flags().IntVar(&seedOptions.FollowsPerUser, "follows", seedOptions.FollowsPerUser, "Follow edges per user")
	seedCmd.Flags().IntVar(&seedOptions.CommentsPerPost, "comments", seedOptions.CommentsPerPost, "Comments per post")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "Random seed (0 picks one)")
}

func healthChecks(a *app) map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := a.db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.db.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error { return a.db.Mongo.Ping(ctx, nil) }
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	return checks
}
