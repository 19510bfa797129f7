package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-storefront/internal/app"
	"github.com/metinatakli/cinema-storefront/internal/backend"
	"github.com/metinatakli/cinema-storefront/internal/catalog"
	"github.com/metinatakli/cinema-storefront/internal/mailer"
	"github.com/metinatakli/cinema-storefront/internal/repository"
	appvalidator "github.com/metinatakli/cinema-storefront/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Mailer      *mailer.MockMailer
	Backend     *fakeBackend
	Client      *backend.Client
	Pending     *repository.PostgresPendingBookingRepository
}

func newTestApp(cfg app.Config, fake *fakeBackend) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	backendClient := backend.NewClient(fake.URL(), cfg.Backend.Timeout, catalog.NewAdapter(logger), logger)

	pending := repository.NewPostgresPendingBookingRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		validator,
		mailer,
		sessionManager,
		backendClient,
		backendClient,
		backendClient,
		repository.NewRedisCartStore(redisClient, cfg.CartTTL, logger),
		repository.NewRedisSeatGridCache(redisClient),
		repository.NewRedisCheckoutLock(redisClient),
		pending,
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Mailer:      mailer,
		Backend:     fake,
		Client:      backendClient,
		Pending:     pending,
	}, nil
}
