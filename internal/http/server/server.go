// Package server arma el handler HTTP con todas las dependencias
// cableadas y corre el servidor con graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/turnero/internal/cache"
	"github.com/dropDatabas3/turnero/internal/config"
	"github.com/dropDatabas3/turnero/internal/domain/repository"
	"github.com/dropDatabas3/turnero/internal/email"
	authctrl "github.com/dropDatabas3/turnero/internal/http/controllers/auth"
	membersctrl "github.com/dropDatabas3/turnero/internal/http/controllers/members"
	rotationctrl "github.com/dropDatabas3/turnero/internal/http/controllers/rotation"
	mw "github.com/dropDatabas3/turnero/internal/http/middlewares"
	"github.com/dropDatabas3/turnero/internal/http/router"
	authsvc "github.com/dropDatabas3/turnero/internal/http/services/auth"
	memberssvc "github.com/dropDatabas3/turnero/internal/http/services/members"
	rotationsvc "github.com/dropDatabas3/turnero/internal/http/services/rotation"
	jwtx "github.com/dropDatabas3/turnero/internal/jwt"
	"github.com/dropDatabas3/turnero/internal/metrics"
	"github.com/dropDatabas3/turnero/internal/observability/logger"
	"github.com/dropDatabas3/turnero/internal/rate"
	"github.com/dropDatabas3/turnero/internal/rotation/scopelock"
	memstore "github.com/dropDatabas3/turnero/internal/store/adapters/memory"
	"github.com/dropDatabas3/turnero/internal/store/adapters/pg"
)

// BuildHandler cablea storage, cache, servicios y rutas a partir de la
// config. Devuelve el handler raíz y un cleanup para el shutdown.
func BuildHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	log := logger.L().With(logger.Component("server"))

	// ─── Storage ───
	var (
		tenants  repository.TenantRepository
		members  repository.MemberRepository
		rotation repository.RotationRepository
		ping     func(ctx context.Context) error
		pool     func() *pgxpool.Pool
		cleanups []func()
	)

	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
		st := memstore.New()
		tenants, members, rotation = st.Tenants(), st.Members(), st.Rotation()
		log.Warn("using in-memory storage, state is lost on restart")

	case "postgres":
		pgCfg := pg.Config{DSN: cfg.Storage.DSN, MaxConns: int32(cfg.Storage.Postgres.MaxConns)}
		if cfg.Storage.Postgres.ConnMaxLifetime != "" {
			pgCfg.ConnMaxLifetime = config.Dur(cfg.Storage.Postgres.ConnMaxLifetime)
		}
		st, err := pg.Open(ctx, pgCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		cleanups = append(cleanups, st.Close)
		tenants, members, rotation = st.Tenants, st.Members, st.Rotation
		ping = st.Ping
		pool = st.Pool

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	// ─── Cache ───
	cacheClient := cache.New(cache.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix,
	})
	cleanups = append(cleanups, func() { _ = cacheClient.Close() })

	// ─── Email ───
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		s := email.FromConfig(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.From,
			TLSMode:   cfg.SMTP.TLS,
		})
		s.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		sender = s
	} else {
		sender = email.NoopSender{}
		log.Warn("smtp not configured, emails are discarded")
	}

	// ─── JWT ───
	secret := cfg.JWT.Secret
	if secret == "" {
		// solo dev: validate() exige secret en prod
		secret = "dev-secret-change-me"
	}
	issuer, err := jwtx.NewIssuer(secret, cfg.JWT.Issuer, config.Dur(cfg.JWT.AccessTTL))
	if err != nil {
		return nil, nil, fmt.Errorf("jwt issuer: %w", err)
	}

	// ─── Rate limiting ───
	var otpLimiter, genLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if strings.EqualFold(cfg.Cache.Kind, "redis") {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			cleanups = append(cleanups, func() { _ = client.Close() })
			otpLimiter = rate.NewRedisLimiter(client, "rl:otp:", cfg.Rate.SendOTP.Limit, config.Dur(cfg.Rate.SendOTP.Window))
			genLimiter = rate.NewRedisLimiter(client, "rl:gen:", cfg.Rate.Generate.Limit, config.Dur(cfg.Rate.Generate.Window))
		} else {
			otpLimiter = rate.NewMemoryLimiter(cfg.Rate.SendOTP.Limit, config.Dur(cfg.Rate.SendOTP.Window))
			genLimiter = rate.NewMemoryLimiter(cfg.Rate.Generate.Limit, config.Dur(cfg.Rate.Generate.Window))
		}
	}

	// ─── Metrics ───
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		h, err := metrics.Register(nil, pool)
		if err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		metricsHandler = h
	}

	// ─── Services ───
	authService := authsvc.NewService(authsvc.Deps{
		Tenants: tenants,
		Cache:   cacheClient,
		Sender:  sender,
		Issuer:  issuer,
		OTPTTL:  config.Dur(cfg.OTP.TTL),
	})
	membersService := memberssvc.NewService(members)
	rotationService := rotationsvc.NewService(rotationsvc.Deps{
		Rotation:      rotation,
		Members:       members,
		Tenants:       tenants,
		Locks:         scopelock.New(),
		Notifier:      email.NewNotifier(sender),
		LockTimeout:   config.Dur(cfg.Rotation.LockTimeout),
		LedgerRetries: cfg.Rotation.LedgerRetries,
	})

	handler := router.New(router.Deps{
		Auth:            authctrl.NewController(authService),
		Members:         membersctrl.NewController(membersService),
		Rotation:        rotationctrl.NewController(rotationService),
		RequireAuth:     mw.RequireAuth(issuer),
		OTPLimiter:      otpLimiter,
		GenerateLimiter: genLimiter,
		Ping:            ping,
		MetricsHandler:  metricsHandler,
		CORSOrigins:     cfg.Server.CORSAllowedOrigins,
	})

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return handler, cleanup, nil
}

// Run levanta el servidor y bloquea hasta SIGINT/SIGTERM, con shutdown
// ordenado de 10 segundos.
func Run(cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.L().Info("shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
