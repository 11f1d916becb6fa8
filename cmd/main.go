package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-booking-pricing/docs"
	"github.com/sbilibin2017/gw-booking-pricing/internal/facades"
	"github.com/sbilibin2017/gw-booking-pricing/internal/handlers"
	"github.com/sbilibin2017/gw-booking-pricing/internal/jwt"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/middlewares"
	"github.com/sbilibin2017/gw-booking-pricing/internal/repositories"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	pb "github.com/sbilibin2017/proto-exchange/exchange"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Rates providers selectable with RATES_PROVIDER.
const (
	ratesProviderGRPC = "grpc"
	ratesProviderHTTP = "http"
)

// config holds every setting read from the environment.
type config struct {
	appHost  string
	appPort  string
	logLevel string

	pgHost         string
	pgPort         int
	pgUser         string
	pgPassword     string
	pgDB           string
	pgMaxOpenConns int
	pgMaxIdleConns int

	redisHost         string
	redisPort         int
	redisDB           int
	redisPassword     string
	redisPoolSize     int
	redisMinIdleConns int
	redisExpSecond    int

	gwHost           string
	gwPort           string
	ratesProvider    string
	ratesHTTPURL     string
	ratesHTTPTimeout int

	rateFallback string

	jwtSecretKey string
	jwtExpSecond int

	kafkaBrokers      []string
	kafkaBookingTopic string
	kafkaPaymentTopic string
	kafkaGroupID      string

	rateLimitRequests     int
	rateLimitWindowSecond int

	bookingPendingTTLSecond    int
	bookingSweepIntervalSecond int
	idempotencyDBPath          string
}

// @title gw-booking-pricing API
// @version 1.0.0
// @description Pricing, currency conversion and booking lifecycle for hotel, restaurant and experience listings
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the application configuration.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var err error
	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var v int
		if v, err = strconv.Atoi(getEnv(key, defaultValue)); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return v
	}

	cfg := &config{}

	// Application config
	cfg.appHost = getEnv("APP_HOST", "localhost")
	cfg.appPort = getEnv("APP_PORT", "8080")
	cfg.logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.pgHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.pgUser = getEnv("POSTGRES_USER", "user")
	cfg.pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.pgDB = getEnv("POSTGRES_DB", "database")
	cfg.pgPort = getInt("POSTGRES_PORT", "5432")
	cfg.pgMaxOpenConns = getInt("POSTGRES_MAX_OPEN_CONNS", "16")
	cfg.pgMaxIdleConns = getInt("POSTGRES_MAX_IDLE_CONNS", "8")

	// Redis config
	cfg.redisHost = getEnv("REDIS_HOST", "localhost")
	cfg.redisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.redisPort = getInt("REDIS_PORT", "6379")
	cfg.redisDB = getInt("REDIS_DB", "0")
	cfg.redisPoolSize = getInt("REDIS_POOL_SIZE", "10")
	cfg.redisMinIdleConns = getInt("REDIS_MIN_IDLE_CONNS", "2")
	cfg.redisExpSecond = getInt("REDIS_EXP_SECOND", "60")

	// Exchange rates config
	cfg.gwHost = getEnv("GW_EXCHANGER_HOST", "localhost")
	cfg.gwPort = getEnv("GW_EXCHANGER_PORT", "50051")
	cfg.ratesProvider = strings.ToLower(getEnv("RATES_PROVIDER", ratesProviderGRPC))
	cfg.ratesHTTPURL = getEnv("RATES_HTTP_URL", facades.DefaultExchangeRatesURL)
	cfg.ratesHTTPTimeout = getInt("RATES_HTTP_TIMEOUT_SECOND", "5")
	cfg.rateFallback = getEnv("PRICING_RATE_FALLBACK", string(services.RateFallbackSource))

	// JWT config
	cfg.jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	cfg.jwtExpSecond = getInt("JWT_EXP_SECOND", "3600")

	// Kafka config
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.kafkaBrokers = append(cfg.kafkaBrokers, b)
			}
		}
	}
	cfg.kafkaBookingTopic = getEnv("KAFKA_BOOKING_TOPIC", "booking-events")
	cfg.kafkaPaymentTopic = getEnv("KAFKA_PAYMENT_TOPIC", "payment-events")
	cfg.kafkaGroupID = getEnv("KAFKA_GROUP_ID", "gw-booking-pricing")

	// Rate limiting config
	cfg.rateLimitRequests = getInt("RATE_LIMIT_REQUESTS", "60")
	cfg.rateLimitWindowSecond = getInt("RATE_LIMIT_WINDOW_SECOND", "60")

	// Booking config
	cfg.bookingPendingTTLSecond = getInt("BOOKING_PENDING_TTL_SECOND", "1800")
	cfg.bookingSweepIntervalSecond = getInt("BOOKING_SWEEP_INTERVAL_SECOND", "60")
	cfg.idempotencyDBPath = getEnv("IDEMPOTENCY_DB_PATH", "idempotency.db")

	if err != nil {
		return nil, err
	}
	if cfg.ratesProvider != ratesProviderGRPC && cfg.ratesProvider != ratesProviderHTTP {
		return nil, fmt.Errorf("RATES_PROVIDER: unknown provider %q", cfg.ratesProvider)
	}
	if _, err := services.ParseRateFallbackPolicy(cfg.rateFallback); err != nil {
		return nil, fmt.Errorf("PRICING_RATE_FALLBACK: %w", err)
	}
	if cfg.bookingSweepIntervalSecond <= 0 {
		return nil, fmt.Errorf("BOOKING_SWEEP_INTERVAL_SECOND: must be positive, got %d", cfg.bookingSweepIntervalSecond)
	}
	if cfg.bookingPendingTTLSecond <= 0 {
		return nil, fmt.Errorf("BOOKING_PENDING_TTL_SECOND: must be positive, got %d", cfg.bookingPendingTTLSecond)
	}

	return cfg, nil
}

// run initializes the logger, database, Redis, rates provider, Kafka and HTTP server.
// It sets up routes, applies middleware, starts background workers and handles graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.pgUser, cfg.pgPassword, cfg.pgHost, cfg.pgPort, cfg.pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", cfg.pgHost, cfg.pgPort, cfg.pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.pgMaxOpenConns)
	db.SetMaxIdleConns(cfg.pgMaxIdleConns)

	if err := repositories.Migrate(ctx, db); err != nil {
		return err
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.redisHost, cfg.redisPort),
		Password:     cfg.redisPassword,
		DB:           cfg.redisDB,
		PoolSize:     cfg.redisPoolSize,
		MinIdleConns: cfg.redisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer rdb.Close()

	// Exchange rates provider
	var rates services.ExchangeRateReader
	switch cfg.ratesProvider {
	case ratesProviderHTTP:
		logger.Log.Infof("Using HTTP exchange rates feed %s", cfg.ratesHTTPURL)
		rates = facades.NewExchangeRatesHTTPFacade(cfg.ratesHTTPURL, time.Duration(cfg.ratesHTTPTimeout)*time.Second)
	default:
		grpcAddr := fmt.Sprintf("%s:%s", cfg.gwHost, cfg.gwPort)
		conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("grpc client for %s: %w", grpcAddr, err)
		}
		defer conn.Close()
		logger.Log.Infof("Using gRPC exchange rates service at %s", grpcAddr)
		rates = facades.NewExchangeRatesGRPCFacade(pb.NewExchangeServiceClient(conn))
	}

	// Idempotency store
	idempotencyRepo, err := repositories.NewIdempotencyRepository(cfg.idempotencyDBPath)
	if err != nil {
		return err
	}
	defer idempotencyRepo.Close()

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.jwtSecretKey),
		jwt.WithExpiration(time.Duration(cfg.jwtExpSecond)*time.Second),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	listingReadRepo := repositories.NewListingReadRepository(db)
	listingWriteRepo := repositories.NewListingWriteRepository(db)
	bookingReadRepo := repositories.NewBookingReadRepository(db)
	bookingWriteRepo := repositories.NewBookingWriteRepository(db, middlewares.GetTxFromContext)
	rateCacheRepo := repositories.NewExchangeRateCacheRepository(rdb, time.Duration(cfg.redisExpSecond)*time.Second)
	rateLimitRepo := repositories.NewRateLimitRepository(rdb, "")

	// Initialize services
	policy, _ := services.ParseRateFallbackPolicy(cfg.rateFallback)
	converter := services.NewCurrencyConverter(rates, rateCacheRepo)
	pricingService := services.NewPricingService(converter, policy)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens)
	listingService := services.NewListingService(listingReadRepo, listingWriteRepo)

	bookingOpts := []services.BookingOpt{
		services.WithIdempotencyStore(idempotencyRepo),
		services.WithPendingTTL(time.Duration(cfg.bookingPendingTTLSecond) * time.Second),
		services.WithAfterCommit(middlewares.AfterCommit),
	}

	var paymentConsumer *services.PaymentEventConsumer
	var paymentReader *kafka.Reader
	if len(cfg.kafkaBrokers) > 0 {
		bookingWriter := &kafka.Writer{
			Addr:         kafka.TCP(cfg.kafkaBrokers...),
			Topic:        cfg.kafkaBookingTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		defer bookingWriter.Close()
		bookingOpts = append(bookingOpts, services.WithKafkaWriter(bookingWriter))

		paymentReader = kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.kafkaBrokers,
			GroupID: cfg.kafkaGroupID,
			Topic:   cfg.kafkaPaymentTopic,
		})
		logger.Log.Infof("Kafka enabled: brokers=%v booking_topic=%s payment_topic=%s",
			cfg.kafkaBrokers, cfg.kafkaBookingTopic, cfg.kafkaPaymentTopic)
	} else {
		logger.Log.Warn("KAFKA_BROKERS is empty, booking events are not published and payment events are not consumed")
	}

	bookingService := services.NewBookingService(listingReadRepo, bookingReadRepo, bookingWriteRepo, pricingService, bookingOpts...)
	if paymentReader != nil {
		paymentConsumer = services.NewPaymentEventConsumer(paymentReader, bookingService)
	}

	// Setup router
	r := newRouter(cfg, routerDeps{
		tokens:        tokens,
		users:         userReadRepo,
		db:            db,
		rateCounter:   rateLimitRepo,
		authService:   authService,
		pricing:       pricingService,
		listings:      listingService,
		bookings:      bookingService,
		swaggerDocURL: fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.appHost, cfg.appPort),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	workersCtx, stopWorkers := context.WithCancel(ctxShutdown)
	defer stopWorkers()
	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()
		bookingService.RunExpirySweep(workersCtx, time.Duration(cfg.bookingSweepIntervalSecond)*time.Second)
	}()

	if paymentConsumer != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			defer paymentReader.Close()
			if err := paymentConsumer.Run(workersCtx); err != nil {
				errChan <- fmt.Errorf("payment consumer failed: %w", err)
			}
		}()
	}

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.appHost, cfg.appPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case runErr = <-errChan:
		logger.Log.Errorw("stopping after failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	stopWorkers()
	workers.Wait()

	logger.Log.Info("HTTP server stopped gracefully")
	return runErr
}

// routerDeps are the components the HTTP routes are built from.
type routerDeps struct {
	tokens        middlewares.Tokener
	users         middlewares.UserGetter
	db            *sqlx.DB
	rateCounter   middlewares.RateCounter
	authService   *services.AuthService
	pricing       *services.PricingService
	listings      *services.ListingService
	bookings      *services.BookingService
	swaggerDocURL string
}

// newRouter mounts the public, rate-limited and authenticated routes under /api/v1.
func newRouter(cfg *config, deps routerDeps) http.Handler {
	limit := int64(cfg.rateLimitRequests)
	window := time.Duration(cfg.rateLimitWindowSecond) * time.Second
	rateLimit := func(scope string) func(http.Handler) http.Handler {
		return middlewares.RateLimitMiddleware(deps.rateCounter, scope, limit, window)
	}
	actor := handlers.ActorGetter(middlewares.GetActorFromContext)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.With(rateLimit("register")).Post("/register", handlers.NewRegisterHandler(deps.authService))
		r.With(rateLimit("login")).Post("/login", handlers.NewLoginHandler(deps.authService))
		r.With(rateLimit("quote")).Post("/pricing/quote", handlers.NewQuoteHandler(deps.pricing, deps.listings))
		r.Get("/listings/{id}", handlers.NewGetListingHandler(deps.listings))

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(deps.tokens, deps.users))

			r.Put("/users/{id}/role", handlers.NewAssignRoleHandler(deps.authService, actor))

			r.Post("/listings", handlers.NewCreateListingHandler(deps.listings, actor))
			r.Post("/listings/{id}/approve", handlers.NewApproveListingHandler(deps.listings, actor))
			r.Post("/listings/{id}/reject", handlers.NewRejectListingHandler(deps.listings, actor))

			r.Get("/bookings/{id}", handlers.NewGetBookingHandler(deps.bookings, actor))
			r.Group(func(r chi.Router) {
				r.Use(middlewares.TxMiddleware(deps.db))
				r.Post("/bookings", handlers.NewCreateBookingHandler(deps.bookings, actor))
				r.Post("/bookings/{id}/cancel", handlers.NewCancelBookingHandler(deps.bookings, actor))
				r.Post("/bookings/{id}/refund", handlers.NewRefundBookingHandler(deps.bookings, actor))
			})
		})
	})

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%s", cfg.appHost, cfg.appPort)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(deps.swaggerDocURL)))

	return r
}
