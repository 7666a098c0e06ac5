package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authflow/internal/storage"
	"github.com/dmitrymomot/authflow/modules/account"
	"github.com/dmitrymomot/authflow/pkg/auth"
	"github.com/dmitrymomot/authflow/pkg/clientip"
	"github.com/dmitrymomot/authflow/pkg/config"
	"github.com/dmitrymomot/authflow/pkg/environment"
	"github.com/dmitrymomot/authflow/pkg/httpserver"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/pg"
	"github.com/dmitrymomot/authflow/pkg/ratelimiter"
	"github.com/dmitrymomot/authflow/pkg/redis"
	"github.com/dmitrymomot/authflow/pkg/requestid"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/telemetry"
)

const serviceName = "authflow"

type appConfig struct {
	Env          string   `env:"APP_ENV" envDefault:"development"`
	SessionStore string   `env:"SESSION_STORE" envDefault:"postgres"`
	UserStore    string   `env:"USER_STORE" envDefault:"postgres"`
	BcryptCost   int      `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	CORSOrigins  []string `env:"HTTP_CORS_ORIGINS" envSeparator:","`

	Log       logger.Config
	HTTP      httpserver.Config
	Session   session.Config
	Account   account.Config
	Telemetry telemetry.Config
	ClientIP  clientip.Config
	RateLimit ratelimiter.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}
	env := environment.Parse(cfg.Env)
	cfg.UserStore = strings.ToLower(strings.TrimSpace(cfg.UserStore))
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	logOpts := []logger.Option{
		logger.WithEnvironment(env, serviceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			session.LoggerExtractor(),
		),
	}
	log := logger.New(append(logOpts, cfg.Log.Options()...)...)
	slog.SetDefault(log)

	tp, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", logger.Error(err))
		}
	}()

	var checks []httpserver.Check

	var pool *pgxpool.Pool
	if cfg.UserStore == "postgres" || cfg.SessionStore == "postgres" {
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return err
		}
		if pool, err = pg.Connect(ctx, pgCfg); err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, storage.Migrations(), pgCfg, log); err != nil {
			return err
		}
		checks = append(checks, pg.Healthcheck(pool))
	}

	users, err := userStorage(cfg.UserStore, pool)
	if err != nil {
		return err
	}

	var store session.Store
	switch cfg.SessionStore {
	case "postgres":
		store = storage.NewSessions(pool)
	case "redis":
		redisCfg, err := config.Load[redis.Config]()
		if err != nil {
			return err
		}
		rdb, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, redis.Healthcheck(rdb))
		store = session.NewRedisStore(rdb, session.WithRedisPrefix(redisCfg.KeyPrefix))
	case "memory":
		store = session.NewMemoryStore()
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
	if cfg.UserStore == "memory" && cfg.SessionStore != "memory" {
		log.Warn("in-memory users with a persistent session store: sessions outlive their users on restart")
	}

	sessions, err := session.NewFromConfig(cfg.Session, store, users,
		session.WithLogger(log),
		session.WithEnvironment(env),
		session.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}

	passwords := auth.NewPasswordService(users,
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithPasswordLogger(log),
	)
	svc := account.NewService(cfg.Account, passwords, sessions, account.WithLogger(log))
	handlerOpts := []account.HandlerOption{account.WithHandlerLogger(log)}
	if cfg.RateLimit.Enabled() {
		limits := ratelimiter.NewMemoryStore()
		limiter, err := ratelimiter.NewBucket(limits, cfg.RateLimit)
		if err != nil {
			return err
		}
		go limits.RunCleanup(ctx, 10*time.Minute)
		handlerOpts = append(handlerOpts, account.WithRateLimiter(limiter, ratelimiter.ByClientIP))
	}
	accountHandler := account.NewHandler(svc, sessions, handlerOpts...)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(cfg.ClientIP.TrustedHeaders...))
	r.Use(telemetry.Middleware(serviceName))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(corsHandler(cfg.CORSOrigins))
	}
	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log, checks...))
	r.Mount("/", accountHandler.Handle())

	go sessions.RunCleanup(ctx, cfg.Session.CleanupInterval)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func userStorage(kind string, pool *pgxpool.Pool) (auth.UserStorage, error) {
	switch kind {
	case "postgres":
		return storage.NewUsers(pool), nil
	case "memory":
		return auth.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown USER_STORE %q", kind)
	}
}

// corsHandler allows credentialed requests from the listed origins only.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestid.Header},
		ExposedHeaders:   []string{requestid.Header},
		AllowCredentials: true,
		MaxAge:           60 * 15,
	})
}
