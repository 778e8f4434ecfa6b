package cmd

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
	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/config"
	"github.com/terraconstructs/articles/internal/db/bunx"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/migrations"
	"github.com/terraconstructs/articles/internal/repository"
	"github.com/terraconstructs/articles/internal/server"
	"github.com/terraconstructs/articles/internal/services/account"
	"github.com/terraconstructs/articles/internal/services/article"
	"github.com/terraconstructs/articles/internal/services/review"
	"github.com/terraconstructs/articles/internal/telemetry"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Articles API server",
	Long:  `Starts the HTTP server for the users, articles and reviews API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		logging.Info().Str("driver", string(bunx.DetectDatabaseType(cfg.DatabaseURL))).Msg("connected to database")

		if autoMigrate {
			groupID, err := migrations.Apply(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			if groupID == 0 {
				logging.Info().Msg("no pending migrations")
			} else {
				logging.Info().Int64("group", groupID).Msg("applied migrations")
			}
		}

		tokens := tokenConfig(cfg)
		issuer, err := auth.NewTokenIssuer(tokens)
		if err != nil {
			return fmt.Errorf("failed to create token issuer: %w", err)
		}
		verifier, err := auth.NewVerifier(tokens)
		if err != nil {
			return fmt.Errorf("failed to create token verifier: %w", err)
		}

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		articleRepo := repository.NewBunArticleRepository(db)
		authorshipRepo := repository.NewBunAuthorshipRepository(db)
		reviewRepo := repository.NewBunReviewRepository(db)

		// Initialize services
		accounts := account.NewService(userRepo, cfg.BcryptCost).
			WithAuthorshipRepository(authorshipRepo).
			WithTokenIssuer(issuer)
		articles := article.NewService(articleRepo, authorshipRepo, userRepo)
		reviews := review.NewService(reviewRepo, articleRepo, userRepo)

		var metrics *telemetry.Metrics
		if cfg.Metrics.Enabled {
			metrics = telemetry.NewMetrics()
		}

		corsOpts := server.DefaultCORSOptions()
		if len(cfg.CORS.AllowedOrigins) > 0 {
			corsOpts.AllowedOrigins = cfg.CORS.AllowedOrigins
		}

		handler, err := server.NewH2CHandler(server.RouterOptions{
			Accounts:      accounts,
			Articles:      articles,
			Reviews:       reviews,
			Verifier:      verifier,
			Metrics:       metrics,
			MetricsPath:   cfg.Metrics.Path,
			CORSOptions:   &corsOpts,
			HealthHandler: healthHandler(db),
		})
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}

		return runServer(cfg.ServerAddr, handler)
	},
}

func tokenConfig(c *config.Config) auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   []byte(c.JWT.Secret),
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		TTL:      c.JWT.ExpiresIn,
	}
}

// healthHandler reports 503 while the database is unreachable.
func healthHandler(db *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("health check: database unreachable")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func runServer(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logging.Info().Msg("server stopped")
	}

	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
