package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/cinema-storefront/internal/backend"
	"github.com/metinatakli/cinema-storefront/internal/catalog"
	"github.com/metinatakli/cinema-storefront/internal/checkout"
	"github.com/metinatakli/cinema-storefront/internal/domain"
	"github.com/metinatakli/cinema-storefront/internal/mailer"
	"github.com/metinatakli/cinema-storefront/internal/reconcile"
	"github.com/metinatakli/cinema-storefront/internal/repository"
	appvalidator "github.com/metinatakli/cinema-storefront/internal/validator"
	"github.com/metinatakli/cinema-storefront/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

var (
	version = vcs.Version()
)

const (
	sessionIdleTimeout     = 20 * time.Minute
	defaultCartTTL         = 7 * 24 * time.Hour
	defaultCheckoutLockTTL = 2 * time.Minute
)

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	catalog      domain.CatalogGateway
	promotions   domain.PromotionGateway
	carts        domain.CartStore
	seatGrids    domain.SeatGridCache
	checkoutLock domain.CheckoutLock
	orchestrator *checkout.Orchestrator

	// newRand seeds placeholder seat grids
	newRand func() *rand.Rand

	wg sync.WaitGroup
}

type Config struct {
	Port             int
	Env              string
	Backend          BackendConfig
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Reconcile        ReconcileConfig
	OpsEmail         string
	CartTTL          time.Duration
	CheckoutLockTTL  time.Duration
	OtelCollectorUrl string
}

type BackendConfig struct {
	URL          string
	Timeout      time.Duration
	ServiceToken string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type ReconcileConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	catalog domain.CatalogGateway,
	promotions domain.PromotionGateway,
	bookings domain.BookingGateway,
	carts domain.CartStore,
	seatGrids domain.SeatGridCache,
	checkoutLock domain.CheckoutLock,
	pending domain.PendingBookingRepository,
) *Application {
	if cfg.CheckoutLockTTL <= 0 {
		cfg.CheckoutLockTTL = defaultCheckoutLockTTL
	}

	app := &Application{
		config:         cfg,
		logger:         logger,
		validator:      validator,
		mailer:         mailer,
		sessionManager: sessionManager,
		catalog:        catalog,
		promotions:     promotions,
		carts:          carts,
		seatGrids:      seatGrids,
		checkoutLock:   checkoutLock,
		orchestrator:   checkout.NewOrchestrator(bookings, pending, logger),
		newRand:        newRand,
	}

	// the lock must outlive the longest possible submission
	if app.config.CheckoutLockTTL < app.backendTimeout() {
		logger.Warn("checkout lock ttl is shorter than a submission, raising it",
			"configured", app.config.CheckoutLockTTL, "ttl", app.backendTimeout())
		app.config.CheckoutLockTTL = app.backendTimeout()
	}

	return app
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func Run() error {
	// a missing .env file is fine, the environment and flags still apply
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.Backend.URL, "backend-url", envString("BACKEND_URL", "http://localhost:8080"), "Booking backend base URL")
	flag.DurationVar(&cfg.Backend.Timeout, "backend-timeout", envDuration("BACKEND_TIMEOUT", backend.DefaultTimeout), "Timeout of a single backend call")
	flag.StringVar(&cfg.Backend.ServiceToken, "backend-service-token", envString("BACKEND_SERVICE_TOKEN", ""), "Bearer token used by background jobs")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN (optional)")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", "localhost:6379"), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Cinema Storefront <no-reply@cinema.local>"), "SMTP sender")
	flag.StringVar(&cfg.OpsEmail, "ops-email", envString("OPS_EMAIL", ""), "Recipient of operational reports")

	flag.DurationVar(&cfg.Reconcile.Interval, "reconcile-interval", envDuration("RECONCILE_INTERVAL", 5*time.Minute), "Interval between pending booking reconciliation runs")
	flag.IntVar(&cfg.Reconcile.BatchSize, "reconcile-batch-size", envInt("RECONCILE_BATCH_SIZE", reconcile.DefaultBatchSize), "Pending bookings handled per reconciliation run")
	flag.IntVar(&cfg.Reconcile.MaxAttempts, "reconcile-max-attempts", envInt("RECONCILE_MAX_ATTEMPTS", reconcile.DefaultMaxAttempts), "Failed cancellations before a booking shell is abandoned")

	flag.DurationVar(&cfg.CartTTL, "cart-ttl", envDuration("CART_TTL", defaultCartTTL), "Lifetime of an untouched cart")
	flag.DurationVar(&cfg.CheckoutLockTTL, "checkout-lock-ttl", envDuration("CHECKOUT_LOCK_TTL", defaultCheckoutLockTTL), "Upper bound of a single checkout submission")

	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	shutdownTelemetry, err := InitTelemetry(cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	logger := newLogger(cfg, os.Stdout)

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var pending domain.PendingBookingRepository
	if cfg.DB.DSN != "" {
		err = RunMigrations(cfg.DB.DSN)
		if err != nil {
			return err
		}

		db, err := NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		pending = repository.NewPostgresPendingBookingRepository(db)
	} else {
		logger.Warn("no database configured, pending bookings are kept in memory")
		pending = repository.NewMemoryPendingBookingRepository()
	}

	backendClient := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, catalog.NewAdapter(logger), logger)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	reconciler := reconcile.New(
		reconcile.Config{
			Interval:     cfg.Reconcile.Interval,
			BatchSize:    cfg.Reconcile.BatchSize,
			MaxAttempts:  cfg.Reconcile.MaxAttempts,
			ServiceToken: cfg.Backend.ServiceToken,
			ReportTo:     cfg.OpsEmail,
		},
		pending,
		backendClient,
		smtpMailer,
		logger,
	)

	if cfg.Backend.ServiceToken != "" {
		err = reconciler.Start()
		if err != nil {
			return err
		}
		defer reconciler.Shutdown()
	} else {
		logger.Warn("no backend service token configured, pending booking reconciliation is disabled")
	}

	app := NewApp(
		cfg,
		logger,
		appvalidator.NewValidator(),
		smtpMailer,
		NewSessionManager(redisClient),
		backendClient,
		backendClient,
		backendClient,
		repository.NewRedisCartStore(redisClient, cfg.CartTTL, logger),
		repository.NewRedisSeatGridCache(redisClient),
		repository.NewRedisCheckoutLock(redisClient),
		pending,
	)

	return app.run()
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return d
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = sessionIdleTimeout
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * app.backendTimeout(),
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

// backendTimeout bounds a checkout, which makes at least three sequential
// backend calls.
func (app *Application) backendTimeout() time.Duration {
	if app.config.Backend.Timeout <= 0 {
		return 3 * backend.DefaultTimeout
	}

	return 3 * app.config.Backend.Timeout
}
