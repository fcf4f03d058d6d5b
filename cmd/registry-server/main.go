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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/medreg/registry/internal/config"
	"github.com/medreg/registry/internal/domain/citizenship"
	"github.com/medreg/registry/internal/domain/diagnosis"
	"github.com/medreg/registry/internal/domain/financing"
	"github.com/medreg/registry/internal/domain/insurance"
	"github.com/medreg/registry/internal/domain/maternity"
	"github.com/medreg/registry/internal/domain/medorg"
	"github.com/medreg/registry/internal/domain/nationality"
	"github.com/medreg/registry/internal/domain/newborn"
	"github.com/medreg/registry/internal/domain/patient"
	"github.com/medreg/registry/internal/domain/patientattr"
	"github.com/medreg/registry/internal/domain/patientdiagnosis"
	"github.com/medreg/registry/internal/domain/sickleave"
	"github.com/medreg/registry/internal/domain/staffassign"
	"github.com/medreg/registry/internal/platform/apperr"
	"github.com/medreg/registry/internal/platform/auth"
	"github.com/medreg/registry/internal/platform/db"
	"github.com/medreg/registry/internal/platform/events"
	"github.com/medreg/registry/internal/platform/i18n"
	"github.com/medreg/registry/internal/platform/metrics"
	"github.com/medreg/registry/internal/platform/middleware"
	"github.com/medreg/registry/internal/platform/rpn"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "registry-server",
		Short: "Medical registry API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(consumeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the registry API server and catalog sync consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func consumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Run only the catalog sync consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if len(cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKERS is required for the consumer")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			resolver := i18n.NewResolver(cfg.DefaultLanguage, cfg.SupportedLocales)
			router := newSyncRouter(pool, resolver, cfg.ServiceName, cfg.KafkaSource, logger)
			consumer, err := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, router, logger)
			if err != nil {
				return err
			}

			logger.Info().Str("topic", cfg.KafkaTopic).Str("group", cfg.KafkaGroup).
				Msg("catalog sync consumer started")
			return consumer.Run(ctx)
		},
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newSyncRouter registers the Kafka handlers of every synchronized catalog.
func newSyncRouter(pool *pgxpool.Pool, resolver *i18n.Resolver, destination, source string, logger zerolog.Logger) *events.Router {
	router := events.NewRouter(destination, logger)
	if source != "" {
		router.ExpectSource(source)
	}

	citizenship.NewService(citizenship.NewRepo(pool), resolver).RegisterSync(router)
	nationality.NewService(nationality.NewRepo(pool), resolver).RegisterSync(router)
	financing.NewService(financing.NewRepo(pool), resolver).RegisterSync(router)
	medorg.NewService(medorg.NewRepo(pool), resolver).RegisterSync(router)
	patientattr.NewService(patientattr.NewRepo(pool), resolver).RegisterSync(router)
	diagnosis.NewService(diagnosis.NewRepo(pool), resolver).RegisterSync(router)

	return router
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	resolver := i18n.NewResolver(cfg.DefaultLanguage, cfg.SupportedLocales)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	m := metrics.New()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.BodyLimit("1M", "32M"))
	e.Use(m.Middleware())
	e.Use(middleware.Locale(resolver))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "Accept-Language", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	e.GET("/health", db.HealthHandler(pool))
	e.GET("/metrics", m.Handler())

	apiV1 := e.Group("/api/v1")

	// Fine-grained write decisions come from the external Auth Service.
	if cfg.AuthServiceURL != "" {
		permClient := auth.NewPermissionClient(cfg.AuthServiceURL, redisClient, logger)
		apiV1.Use(auth.WritePermission(permClient, "registry:write"))
	}

	// Catalogs
	citizenshipSvc := citizenship.NewService(citizenship.NewRepo(pool), resolver)
	citizenship.NewHandler(citizenshipSvc).RegisterRoutes(apiV1)

	nationalitySvc := nationality.NewService(nationality.NewRepo(pool), resolver)
	nationality.NewHandler(nationalitySvc).RegisterRoutes(apiV1)

	financingSvc := financing.NewService(financing.NewRepo(pool), resolver)
	financing.NewHandler(financingSvc).RegisterRoutes(apiV1)

	medorgSvc := medorg.NewService(medorg.NewRepo(pool), resolver)
	medorg.NewHandler(medorgSvc).RegisterRoutes(apiV1)

	patientattrSvc := patientattr.NewService(patientattr.NewRepo(pool), resolver)
	patientattr.NewHandler(patientattrSvc).RegisterRoutes(apiV1)

	diagnosisSvc := diagnosis.NewService(diagnosis.NewRepo(pool), resolver)
	diagnosis.NewHandler(diagnosisSvc).RegisterRoutes(apiV1)

	// Patient registry
	patientSvc := patient.NewService(patient.NewRepo(pool),
		citizenshipSvc, nationalitySvc, medorgSvc, financingSvc, patientattrSvc)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	insuranceSvc := insurance.NewService(insurance.NewRepo(pool), patientSvc, financingSvc)
	insurance.NewHandler(insuranceSvc).RegisterRoutes(apiV1)

	patientDiagSvc := patientdiagnosis.NewService(patientdiagnosis.NewRepo(pool), patientSvc, diagnosisSvc)
	patientdiagnosis.NewHandler(patientDiagSvc).RegisterRoutes(apiV1)

	// Assets journal
	maternitySvc := maternity.NewService(maternity.NewRepo(pool), patientSvc, logger)
	maternity.NewHandler(maternitySvc, cfg.BGFilePath).RegisterRoutes(apiV1)

	rpnClient := rpn.NewClient(cfg.RPNServiceURL, logger)
	newbornSvc := newborn.NewService(newborn.NewRepo(pool), patientSvc, medorgSvc, rpnClient, logger)
	newborn.NewHandler(newbornSvc).RegisterRoutes(apiV1)

	sickleaveSvc := sickleave.NewService(sickleave.NewRepo(pool), patientSvc, logger)
	sickleave.NewHandler(sickleaveSvc).RegisterRoutes(apiV1)

	staffassignSvc := staffassign.NewService(staffassign.NewRepo(pool), patientSvc, logger)
	staffassign.NewHandler(staffassignSvc).RegisterRoutes(apiV1)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Msg("http server started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		router := events.NewRouter(cfg.ServiceName, logger)
		if cfg.KafkaSource != "" {
			router.ExpectSource(cfg.KafkaSource)
		}
		citizenshipSvc.RegisterSync(router)
		nationalitySvc.RegisterSync(router)
		financingSvc.RegisterSync(router)
		medorgSvc.RegisterSync(router)
		patientattrSvc.RegisterSync(router)
		diagnosisSvc.RegisterSync(router)

		consumer, err := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, router, logger)
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		g.Go(func() error {
			logger.Info().Str("topic", cfg.KafkaTopic).Msg("catalog sync consumer started")
			return consumer.Run(gctx)
		})
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not set; catalog synchronization is disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
