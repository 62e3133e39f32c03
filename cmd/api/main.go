package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atlasdocs/internal/audit"
	"atlasdocs/internal/auth"
	"atlasdocs/internal/config"
	"atlasdocs/internal/database"
	"atlasdocs/internal/database/migration"
	handlers "atlasdocs/internal/http/handler"
	"atlasdocs/internal/http/middleware"
	"atlasdocs/internal/logging"
	"atlasdocs/internal/otel"
	"atlasdocs/internal/repository/postgres"
	"atlasdocs/internal/service"
	"atlasdocs/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Atlas Documents API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Location: loc})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.Component(log, "otel"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, logging.Component(log, "database"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logging.Component(log, "database"), cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	objStore, err = storage.NewBreaker(objStore, cfg.Breaker, reg, logging.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage breaker")
	}

	if !cfg.AdminSecretIsSet {
		log.Warn().Msg("ADMIN_SECRET is not set; using the development default")
	}
	gate := auth.NewGate(cfg.AdminSecret)

	auditLog, err := audit.NewLogger(postgres.NewAuditPostgres(db), reg, logging.Component(log, "audit"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audit logger")
	}

	docSvc := service.NewDocumentService(
		objStore,
		postgres.NewDocumentPostgres(db),
		gate,
		auditLog,
		logging.Component(log, "service"),
		service.WithLocation(loc),
	)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    int(cfg.MaxUploadSize),
	})

	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(logging.Component(log, "http")))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, docSvc, auditLog)
	handlers.RegisterDocs(app)

	if cfg.PublicDir != "" {
		app.Static("/", cfg.PublicDir)
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Int64("max_upload_bytes", cfg.MaxUploadSize).Msg("server listening")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}
}
