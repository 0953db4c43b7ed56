package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"api-gateway/gateway"
	"api-gateway/gateway/application"
	"api-gateway/gateway/backend"
	"api-gateway/gateway/domain"
	"api-gateway/gateway/infra"
	"api-gateway/gateway/service"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(getenvDefault("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	_, err = rdb.Ping(pingCtx).Result()
	cancelPing()
	if err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	store := infra.NewRedisWindowStore(rdb, infra.WithWindowTimeout(cfg.storeTimeout))
	hasher := infra.NewPBKDF2Hasher(cfg.rateLimitSalt)
	limiter := application.NewRateLimiter(store, hasher, application.WithRateLimiterLogger(log))
	authGate := application.NewAuthGate(cfg.jwtSecret)
	monitor := infra.NewRedisMonitorSink(rdb, infra.WithMonitorStream(cfg.monitorStream))

	accounts := backend.NewHTTPAccounts(
		cfg.accountsURL,
		backend.WithThrottle(cfg.backendRPS, cfg.backendBurst),
		backend.WithAccountsLogger(log),
	)

	registry := gateway.NewRegistry(gateway.Options{
		Auth:               authGate,
		Limiter:            limiter,
		Monitor:            monitor,
		Log:                log,
		DefaultCORSOrigins: cfg.corsOrigins,
		TrustXForwardedFor: cfg.trustXFF,
	})

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	err = registerRoutes(startupCtx, registry, cfg, store, limiter, accounts)
	cancelStartup()
	if err != nil {
		log.Fatalf("route registration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := registry.Handler()
	h = gateway.ConcurrencyMiddleware(gateway.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("gateway listening on %s -> accounts %s", cfg.listenAddr, cfg.accountsURL)
	log.Infof("rate limit store: %s timeout=%s", redisOpts.Addr, cfg.storeTimeout)
	log.Infof("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// registerRoutes monta a tabela de rotas explicitamente, uma chamada por
// operação exposta. As rotas OPTIONS correspondentes saem de graça.
func registerRoutes(
	ctx context.Context,
	registry *gateway.Registry,
	cfg config,
	store *infra.RedisWindowStore,
	limiter *application.RateLimiter,
	accounts backend.Accounts,
) error {
	healthScope := domain.ScopePublic
	healthAuth := false
	if cfg.healthScopePrivate {
		healthScope = domain.ScopePrivate
		healthAuth = true
	}

	routes := []struct {
		reg domain.Registration
		fn  gateway.RouteFunc
	}{
		{
			reg: domain.Registration{
				Method:       "GET",
				Path:         "/v1/health-check",
				AuthRequired: healthAuth,
				RateLimit:    &domain.RateLimit{Scope: healthScope, PerMinute: cfg.healthRateLimit},
			},
			fn: service.HealthCheck(store, nil),
		},
		{
			reg: domain.Registration{
				Method:       "GET",
				Path:         "/v1/rate-limit",
				AuthRequired: true,
				RateLimit:    &domain.RateLimit{Scope: domain.ScopePrivate, PerMinute: 60},
			},
			fn: service.RateLimitReport(limiter, registry.RateLimited),
		},
		{
			reg: domain.Registration{
				Method:    "POST",
				Path:      "/v1/user/auth",
				RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 60},
				Expected:  []domain.Kind{domain.KindUserNotVerified},
			},
			fn: service.AuthUser(accounts),
		},
		{
			reg: domain.Registration{
				Method:    "HEAD",
				Path:      "/v1/user/{email}",
				RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 60},
				Expected:  []domain.Kind{domain.KindUserAlreadyExists},
			},
			fn: service.CheckUserExists(accounts),
		},
		{
			reg: domain.Registration{
				Method:    "POST",
				Path:      "/v1/user",
				RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 60},
				Expected:  []domain.Kind{domain.KindUserAlreadyExists},
			},
			fn: service.CreateUser(accounts),
		},
		{
			reg: domain.Registration{
				Method:    "POST",
				Path:      "/v1/user/token",
				RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 60},
				Expected:  []domain.Kind{domain.KindUserNotAuthorised},
			},
			fn: service.VerifyUserToken(accounts),
		},
		{
			reg: domain.Registration{
				Method:    "POST",
				Path:      "/v1/user/resend-email",
				RateLimit: &domain.RateLimit{Scope: domain.ScopePublic, PerMinute: 15},
				Expected:  []domain.Kind{domain.KindUserNotAuthorised},
			},
			fn: service.ResendUserTokenEmail(accounts),
		},
		{
			reg: domain.Registration{
				Method:       "GET",
				Path:         "/v1/user/notifications",
				AuthRequired: true,
			},
			fn: service.UserNotifications(accounts),
		},
		{
			reg: domain.Registration{
				Method:       "GET",
				Path:         "/v1/projects",
				AuthRequired: true,
			},
			fn: service.Projects(accounts),
		},
		{
			reg: domain.Registration{
				Method:       "POST",
				Path:         "/v1/stripe/checkout-session",
				AuthRequired: true,
				Expected:     []domain.Kind{domain.KindUnableToCreateCheckoutSession},
			},
			fn: service.CreateCheckoutSession(accounts),
		},
	}

	for _, route := range routes {
		if err := registry.Register(ctx, route.reg, route.fn); err != nil {
			return err
		}
	}
	return nil
}

type config struct {
	listenAddr    string
	redisURL      string
	jwtSecret     string
	rateLimitSalt string
	accountsURL   string
	corsOrigins   []string
	trustXFF      bool

	storeTimeout       time.Duration
	monitorStream      string
	backendRPS         float64
	backendBurst       int
	concurrencyMax     int
	concurrencyTimeout time.Duration

	healthRateLimit    int
	healthScopePrivate bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.redisURL = os.Getenv("REDIS_URL")
	cfg.jwtSecret = os.Getenv("JWT_SECRET")
	cfg.rateLimitSalt = os.Getenv("RATE_LIMIT_SALT")
	cfg.accountsURL = os.Getenv("ACCOUNTS_URL")
	cfg.corsOrigins = splitCSV(getenvDefault("DEFAULT_CORS", "*"))
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)

	cfg.storeTimeout = getenvDurationDefault("STORE_TIMEOUT", 2*time.Second)
	cfg.monitorStream = getenvDefault("MONITOR_STREAM", "monitor")
	cfg.backendRPS = getenvFloatDefault("BACKEND_RPS", 0)
	cfg.backendBurst = getenvIntDefault("BACKEND_BURST", 0)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.healthRateLimit = getenvIntDefault("HEALTH_RATE_LIMIT", 60)
	cfg.healthScopePrivate = getenvDefault("HEALTH_RATE_SCOPE", "public") == "private"

	if cfg.redisURL == "" {
		return config{}, errors.New("REDIS_URL is required")
	}
	if cfg.jwtSecret == "" {
		return config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.rateLimitSalt == "" {
		return config{}, errors.New("RATE_LIMIT_SALT is required")
	}
	if cfg.accountsURL == "" {
		return config{}, errors.New("ACCOUNTS_URL is required")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
