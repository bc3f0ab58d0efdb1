package main

import (
	"context"
	"maps"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fuelapi/docs"
	"fuelapi/internal/auth"
	"fuelapi/internal/brand"
	"fuelapi/internal/config"
	"fuelapi/internal/database"
	"fuelapi/internal/database/migration"
	"fuelapi/internal/guard"
	handlers "fuelapi/internal/http/handler"
	"fuelapi/internal/http/middleware"
	"fuelapi/internal/otel"
	"fuelapi/internal/repository/postgres"
	"fuelapi/internal/service"
	"fuelapi/internal/storage"
	"fuelapi/internal/vision"
)

const shutdownTimeout = 15 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := otel.Init(ctx, "fuelapi")
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				zap.L().Warn("tracing shutdown failed", zap.Error(err))
			}
		}()

		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
			return err
		}

		objects, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		receipts := storage.NewReceiptStore(objects, storage.PublicBaseURL(cfg.Storage), cfg.Server.MaxUploadBytes)

		classifier := brand.NewClassifier(cfg.Brand.LogosBucket, cfg.Brand.Region)
		for _, key := range slices.Sorted(maps.Keys(cfg.Brand.Mappings)) {
			classifier.AddBrandMapping(key, cfg.Brand.Mappings[key]...)
		}

		extractor, err := vision.New(cfg.Vision, receipts)
		if err != nil {
			return err
		}

		rdb, err := newRedis(ctx, cfg)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
		}
		dupGuard, err := guard.New(cfg.Guard, rdb)
		if err != nil {
			return err
		}

		ingestMetrics, err := service.NewIngestMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			return eris.Wrap(err, "register ingest metrics")
		}
		svc := service.NewFuelRecordService(
			postgres.NewFuelRecordPostgres(db),
			receipts,
			extractor,
			classifier,
			ingestMetrics,
			cfg.Server.ReceiptsFolder,
		)

		promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
		if err != nil {
			return eris.Wrap(err, "register http metrics")
		}

		app := fiber.New(fiber.Config{
			ErrorHandler:          handlers.ErrorHandler(),
			BodyLimit:             int(cfg.Server.MaxUploadBytes) + 1<<20,
			DisableStartupMessage: true,
		})

		app.Use(otelfiber.Middleware())
		app.Use(middleware.RequestID())
		app.Use(middleware.Logger(cfg.Log.Location()))
		app.Use(promMiddleware.Handler())

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// Swagger UI with dynamic host and scheme
		app.Get("/swagger/*", func(c *fiber.Ctx) error {
			scheme := c.Protocol()
			if proto := c.Get("X-Forwarded-Proto"); proto != "" {
				scheme = strings.Split(proto, ",")[0]
			}

			docs.SwaggerInfo.Host = c.Get("Host")
			docs.SwaggerInfo.Schemes = []string{scheme}

			return swagger.HandlerDefault(c)
		})

		handlers.RegisterRoutes(app, db, svc, dupGuard,
			auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
			handlers.UploadLimits{MaxBytes: cfg.Server.MaxUploadBytes, Timeout: cfg.Server.IngestTimeout},
		)

		port := servePort
		if port == "" {
			port = cfg.Server.Port
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server",
				zap.String("port", port),
				zap.String("storage", cfg.Storage.Driver),
				zap.String("vision", cfg.Vision.Provider),
				zap.String("guard", cfg.Guard.Driver),
			)
			if err := app.Listen(":" + port); err != nil {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			return app.ShutdownWithTimeout(shutdownTimeout)
		})
		return g.Wait()
	},
}

// newRedis connects only when the redis guard driver is selected.
func newRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.Guard.Driver != config.GuardDriverRedis {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrapf(err, "redis: ping %s", cfg.Redis.Addr)
	}
	return rdb, nil
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
