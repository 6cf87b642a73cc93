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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"care4-server/internal/config"
	"care4-server/internal/forms"
	"care4-server/internal/inflight"
	"care4-server/internal/logger"
	"care4-server/internal/middleware"
	"care4-server/internal/models"
	"care4-server/internal/notify"
	"care4-server/internal/repositories"
	"care4-server/internal/routes"
	"care4-server/internal/services"
	"care4-server/internal/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "care4-server",
		Short: "Patient intake and appointment API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine, the environment may already be set.
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if _, err := openDB(cfg, log); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	return cfg, logger.New(cfg), nil
}

func openDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func runServer() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}

	files, err := storage.New(ctx, cfg.Storage, db)
	if err != nil {
		return fmt.Errorf("initializing file storage: %w", err)
	}
	guard, err := inflight.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("initializing submission guard: %w", err)
	}

	pipeline := services.NewPipeline(services.Deps{
		Users:        repositories.NewUserDirectory(db),
		Patients:     repositories.NewPatientStore(db),
		Appointments: repositories.NewAppointmentStore(db),
		Files:        files,
		Notifier:     notify.New(cfg.Mailer, log),
	}, log)

	sessions := forms.NewSessions(cfg.Forms.SessionTTL)
	adminSessions := forms.NewSessions(cfg.Forms.SessionTTL)
	go sweepSessions(ctx, log, cfg.Forms.SessionTTL, sessions, adminSessions)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Cfg:           cfg,
		Pipeline:      pipeline,
		Resolver:      forms.NewResolver(forms.NewDefaultRegistry(cfg.PhoneDefaultRegion)),
		Guard:         guard,
		Sessions:      sessions,
		AdminSessions: adminSessions,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func sweepSessions(ctx context.Context, log zerolog.Logger, every time.Duration, registries ...*forms.Sessions) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range registries {
				if n := s.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("expired form sessions swept")
				}
			}
		}
	}
}
