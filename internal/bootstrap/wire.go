package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/config"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/db/postgres"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/bossgrand/garment/services/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/redis"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/security"
	"github.com/bossgrand/garment/services/auth-service/internal/logger"
	http_handlers "github.com/bossgrand/garment/services/auth-service/internal/transport/http/handlers"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/middleware"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/response"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(dsn string, debug bool) (*sql.DB, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL string) (auth.EventPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()

	// 1) security primitives
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	codec := security.NewJWTCodec(security.CodecConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})

	// 2) user store. Config.Load guarantees DB_ADDR in prod, so the
	// in-memory fallback only ever runs in dev.
	var userRepo auth.UserRepo
	var sqlDB *sql.DB
	if cfg.DBAddr != "" {
		sqlDB, err = deps.NewDB(cfg.DBAddr, cfg.Env != "prod")
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = sqlDB.Close() })

		pgRepo := postgres.NewUserRepo(sqlDB)
		userRepo = pgRepo
		if cfg.Env == "dev" {
			postgres.SeedUsers(context.Background(), pgRepo, hasher, "")
		}
	} else {
		logger.Logger.Warn().Msg("DB_ADDR unset; using in-memory user store")
		memRepo := memory.NewUserRepo()
		memory.SeedUsers(context.Background(), memRepo, hasher)
		userRepo = memRepo
	}

	// 3) refresh token blacklist (redis, with a dev memory fallback)
	var blacklist auth.TokenBlacklist = memory.NewTokenBlacklist()
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, "", 0)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			if cfg.Env == "prod" {
				runCleanup(cleanupFns)
				_ = c.Close()
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory blacklist")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			if rc, ok := c.(*redis.Client); ok {
				blacklist = redis.NewTokenBlacklist(rc)
			}
		}
	}

	// 4) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher()
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "prod" {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		} else {
			pub = p
			if c, ok := p.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// 5) service
	authSvc := auth.NewService(userRepo, hasher, codec, blacklist, pub, auth.Config{
		RefreshTTL:           cfg.RefreshTokenTTL,
		ResetTokenTTL:        cfg.PasswordResetTokenTTL,
		LockThreshold:        cfg.LockoutThreshold,
		LockDuration:         cfg.LockoutDuration,
		PasswordResetBaseURL: cfg.PasswordResetBaseURL,
		RevealResetToken:     cfg.RevealResetToken,
	})

	authSvc = authSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.CookieSecure)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Authenticate(authSvc, response.WriteError)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health: healthH,
		Auth:   authH,
		AuthMW: authMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url string) (auth.EventPublisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
