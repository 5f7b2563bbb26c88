package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	catalogapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/catalog"
	identityapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/identity"
	reportapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/report"
	shoppingapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/shopping"
	ticketapp "github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/application/ticket"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/auth"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/cache"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/event"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/logger"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/migration"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/persistence"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/printing"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/qrcode"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/scheduler"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/storage"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/telemetry"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/handler"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/middleware"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/dNogueira300/pimpos-smart-tag-system-sub000/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Pimpos Smart Tag API
//	@version		1.0
//	@description	Backend de la panadería-minimarket: catálogo con etiquetas QR, carrito con presupuesto y tickets.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP setup reports through the plain logger; the bridge core is
	// teed in once log shipping is up.
	otelPipelines, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	if provider := otelPipelines.LogProvider(); provider != nil {
		if log, err = logger.New(logCfg, logger.NewOTelCore(cfg.Telemetry.ServiceName, provider)); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Pimpos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	location, err := cfg.App.Location()
	if err != nil {
		log.Fatal("Invalid store time zone", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		otelPipelines.EnableSpanProfiles()
	}

	var salesMetrics *telemetry.SalesMetrics
	if otelPipelines.MetricsEnabled() {
		if salesMetrics, err = telemetry.NewSalesMetrics(otelPipelines.Meter("pimpos.sales")); err != nil {
			log.Warn("Sales metrics disabled", zap.Error(err))
		}
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, cfg.Database.DBName, log).Register(db.DB); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	if cfg.App.AutoMigrate {
		if err := runMigrations(db, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Session store and token revocations share Redis when it is reachable
	sessionFactory := cache.NewSessionStoreFactory(cfg.Redis, cfg.Shopping.SessionTTL, cache.WithLogger(log))
	cartStore, err := sessionFactory.CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	redisClient := sessionFactory.Client()

	var (
		revocations    auth.RevocationStore
		memRevocations *auth.MemoryRevocationStore
	)
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	} else {
		memRevocations = auth.NewMemoryRevocationStore()
		revocations = memRevocations
	}

	// Object storage for product images
	objectStorage, memStorage, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	qrGenerator := qrcode.NewGenerator(cfg.Media.QRCodeSize)

	// PDF documents; nil ports make the print endpoints answer 503
	var (
		receipts ticketapp.ReceiptRenderer
		labels   catalogapp.LabelRenderer
		renderer *printing.ChromedpRenderer
	)
	if cfg.Printing.Enabled {
		renderer = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			ExecPath:       cfg.Printing.ChromePath,
			DefaultTimeout: cfg.Printing.RenderTimeout,
			MaxConcurrency: cfg.Printing.MaxConcurrency,
			NoSandbox:      os.Geteuid() == 0,
			Logger:         log,
		})
		money, err := printing.NewMoneyFormatter(cfg.Printing.Currency, cfg.Printing.Locale)
		if err != nil {
			log.Fatal("Invalid printing currency or locale", zap.Error(err))
		}
		documents, err := printing.NewDocuments(renderer, qrGenerator, money, printing.StoreInfo{
			Name:    cfg.Printing.StoreName,
			Address: cfg.Printing.StoreAddress,
			TaxID:   cfg.Printing.StoreTaxID,
		}, location, log)
		if err != nil {
			log.Fatal("Failed to load print templates", zap.Error(err))
		}
		receipts, labels = documents, documents
	} else {
		log.Info("PDF printing disabled")
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if salesMetrics != nil {
		eventBus.Subscribe(event.NewSalesMetricsHandler(salesMetrics))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	ticketRepo := persistence.NewGormTicketRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, revocations, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, eventBus, log)
	mediaService := catalogapp.NewProductMediaService(productRepo, objectStorage, qrGenerator, labels, catalogapp.MediaServiceConfig{
		MaxImageBytes: cfg.Media.MaxImageBytes,
		QRCodeSize:    cfg.Media.QRCodeSize,
		URLExpiry:     cfg.Storage.PresignExpiration,
	}, log)
	importService := catalogapp.NewProductImportService(productRepo, categoryRepo, eventBus, catalogapp.ImportConfig{
		MaxRows: cfg.Media.MaxImportRows,
	}, log)
	sessionLocks := shopping.NewSessionLocks()
	cartService := shoppingapp.NewCartService(cartStore, sessionLocks, productRepo, shoppingapp.CartServiceConfig{
		BudgetWindow: cfg.Shopping.BudgetWindow,
	}, log)
	checkoutService := ticketapp.NewCheckoutService(cartStore, sessionLocks, productRepo, ticketRepo, txManager, eventBus, ticketapp.CheckoutConfig{
		NumberPrefix:     cfg.Ticket.NumberPrefix,
		MaxNumberRetries: cfg.Ticket.MaxNumberRetries,
		Location:         location,
	}, log)
	ticketService := ticketapp.NewTicketService(ticketRepo, productRepo, txManager, eventBus, receipts, location, log)
	dashboardService := reportapp.NewDashboardService(ticketRepo, productRepo, location, log)

	if salesMetrics != nil {
		mediaService.SetMetrics(salesMetrics)
		cartService.SetMetrics(salesMetrics)
		ticketService.SetMetrics(salesMetrics)
	}

	if cfg.Auth.AdminUsername != "" {
		result, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal("Failed to bootstrap admin user", zap.Error(err))
		}
		if result.Created {
			log.Warn("Bootstrap admin created, change its password", zap.String("username", result.Username))
		}
	}

	// Scheduler
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(scheduler.Config{
			Location:   location,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, log)
		if err := registerJobs(jobs, cfg.Scheduler, cartStore, memRevocations, ticketRepo, location, log); err != nil {
			log.Fatal("Failed to register scheduled jobs", zap.Error(err))
		}
		jobs.Start()
	}

	// Handlers
	healthChecks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		healthChecks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Category: handler.NewCategoryHandler(categoryService),
		Product:  handler.NewProductHandler(productService, mediaService, cfg.Media.MaxImageBytes),
		Import:   handler.NewProductImportHandler(importService, cfg.Media.MaxImportBytes),
		Shop:     handler.NewShopHandler(cartService, checkoutService, ticketService),
		Ticket:   handler.NewTicketHandler(ticketService),
		Report:   handler.NewReportHandler(dashboardService),
		System:   handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, healthChecks),
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.AccessLog(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Meter:   otelPipelines.Meter("http.server"),
		Enabled: otelPipelines.MetricsEnabled(),
		Logger:  log,
	}))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, "/image", "/import"))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}
	routeOpts := router.RouteOptions{
		MaxImageBytes:  cfg.Media.MaxImageBytes,
		MaxImportBytes: cfg.Media.MaxImportBytes,
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, authLimiter)
		routeOpts.AuthLimiter = middleware.RateLimit(authLimiter)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.RevocationStore = revocations
	jwtConfig.Logger = log
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	engine.GET("/health", handlers.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	if memStorage != nil {
		engine.GET("/media/*key", serveMemoryObject(memStorage))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware)
	r.Register(router.DomainGroups(handlers, routeOpts)...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	for _, limiter := range limiters {
		limiter.Stop()
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if renderer != nil {
		if err := renderer.Close(); err != nil {
			log.Warn("Failed to close Chrome", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	if err := otelPipelines.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited")
}

func runMigrations(db *persistence.Database, log *zap.Logger) error {
	pool, err := db.SQL()
	if err != nil {
		return err
	}
	m, err := migration.New(pool, migrationsPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// newObjectStorage returns the S3 store when enabled. Otherwise images live
// in memory and are served from /media; the second result is then non-nil.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalogapp.ObjectStorage, *storage.MemoryObjectStorage, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, product images are kept in memory")
		mem := storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/media")
		return mem, mem, nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil, nil
}

func serveMemoryObject(mem *storage.MemoryObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, contentType, ok := mem.Object(strings.TrimPrefix(c.Param("key"), "/"))
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

func registerJobs(
	jobs *scheduler.Scheduler,
	cfg config.SchedulerConfig,
	cartStore shopping.CartStore,
	memRevocations *auth.MemoryRevocationStore,
	sales scheduler.SalesSource,
	location *time.Location,
	log *zap.Logger,
) error {
	sweepers := map[string]scheduler.Sweeper{}
	if s, ok := cartStore.(scheduler.Sweeper); ok {
		sweepers["sessions"] = s
	}
	if memRevocations != nil {
		sweepers["token_revocations"] = memRevocations
	}
	if sweep := scheduler.NewSweepJob(log, sweepers); sweep.Len() > 0 && cfg.SessionSweepSchedule != "" {
		if err := jobs.Register(cfg.SessionSweepSchedule, sweep); err != nil {
			return err
		}
	}
	if cfg.DailySummarySchedule != "" {
		if err := jobs.Register(cfg.DailySummarySchedule, scheduler.NewDailySummaryJob(sales, location, log)); err != nil {
			return err
		}
	}
	return nil
}
