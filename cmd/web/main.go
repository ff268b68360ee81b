package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/envstruct"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/logging"
	"github.com/myrjola/japanmethod/internal/metrics"
	"github.com/myrjola/japanmethod/internal/pprofserver"
	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/myrjola/japanmethod/internal/repositories"
	"github.com/myrjola/japanmethod/internal/sessionstore"
	"github.com/myrjola/japanmethod/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	config         config
	sessionManager *scs.SessionManager
	sessions       *sessionstore.Store
	engine         *quiz.Engine
	checkout       *checkout.Requester
	checkouts      *repositories.CheckoutRepository
	metrics        *metrics.Metrics
	htmx           *htmx.HTMX
	templates      *templateCache
	limiter        *ipRateLimiter
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"JAPANMETHOD_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ephemeral in-memory database.
	SqliteURL    string `env:"JAPANMETHOD_SQLITE_URL" envDefault:"./japanmethod.sqlite"`
	CanonicalURL string `env:"JAPANMETHOD_CANONICAL_URL" envDefault:"https://japanmethod.com"`
	ContactEmail string `env:"JAPANMETHOD_CONTACT_EMAIL" envDefault:"hello@japanmethod.com"`
	// StripeSecretKey enables checkout. Without it the pricing pages ask buyers to get in touch instead.
	StripeSecretKey string `env:"STRIPE_SECRET_KEY" envDefault:""`
	// StripeAPIURL overrides the Stripe API endpoint, e.g. for stripe-mock.
	StripeAPIURL string `env:"JAPANMETHOD_STRIPE_API_URL" envDefault:""`
	// PprofAddr is the address for the pprof server. Empty disables it.
	PprofAddr       string        `env:"JAPANMETHOD_PPROF_ADDR" envDefault:""`
	SessionLifetime time.Duration `env:"JAPANMETHOD_SESSION_LIFETIME" envDefault:"720h"`
	// CheckoutRate is the number of checkout requests allowed per minute per client IP. Zero disables limiting.
	CheckoutRate int `env:"JAPANMETHOD_CHECKOUT_RATE" envDefault:"30"`
	// TrustProxy takes the client IP for rate limiting from X-Forwarded-For. Enable only behind a reverse proxy
	// that overwrites the header.
	TrustProxy    bool `env:"JAPANMETHOD_TRUST_PROXY" envDefault:"false"`
	ScoreReversal bool `env:"JAPANMETHOD_SCORE_REVERSAL" envDefault:"false"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err     error
		cfg     config
		db      *sqlite.Database
		catalog *quiz.Catalog
		cache   *templateCache
	)

	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	if catalog, err = quiz.DefaultCatalog(); err != nil {
		return errors.Wrap(err, "load quiz catalog")
	}
	if cache, err = newTemplateCache(); err != nil {
		return errors.Wrap(err, "parse templates")
	}

	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelWarn, "failed to close database",
				errors.SlogError(closeErr))
		}
	}()

	sessionManager := scs.New()
	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 30*time.Minute) //nolint:mnd // 30 minutes
	defer store.StopCleanup()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Name = "japanmethod_session"
	sessionManager.Cookie.Secure = true

	sessions := sessionstore.New(sessionManager)
	var engineOptions []quiz.EngineOption
	if cfg.ScoreReversal {
		engineOptions = append(engineOptions, quiz.WithScoreReversal())
	}
	engine := quiz.NewEngine(catalog, sessions, logger, engineOptions...)

	checkouts := repositories.NewCheckoutRepository(db, logger)
	var provider checkout.Provider
	if cfg.StripeSecretKey != "" {
		provider = checkout.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeAPIURL, logger)
	} else {
		logger.LogAttrs(ctx, slog.LevelWarn, "STRIPE_SECRET_KEY not set, checkout runs in contact-only mode")
	}
	requester := checkout.NewRequester(checkout.Config{
		CanonicalURL: cfg.CanonicalURL,
		ContactEmail: cfg.ContactEmail,
	}, provider, checkouts, logger)

	app := application{
		logger:         logger,
		config:         cfg,
		sessionManager: sessionManager,
		sessions:       sessions,
		engine:         engine,
		checkout:       requester,
		checkouts:      checkouts,
		metrics:        metrics.New(),
		htmx:           htmx.New(),
		templates:      cache,
		limiter:        newIPRateLimiter(ctx, cfg.CheckoutRate),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}

	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
