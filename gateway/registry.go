package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"api-gateway/gateway/application"
	"api-gateway/gateway/domain"
)

// Options agrupa as dependências compartilhadas por todos os entrypoints.
type Options struct {
	Auth    *application.AuthGate
	Limiter *application.RateLimiter
	Monitor domain.Sink
	Log     logrus.FieldLogger

	// DefaultCORSOrigins vale para rotas que não declaram origens próprias.
	DefaultCORSOrigins []string
	TrustXForwardedFor bool

	// Now permite injetar relógio nos testes.
	Now func() time.Time
}

// Registry é a tabela de rotas do gateway, montada explicitamente no startup.
type Registry struct {
	opts         Options
	mux          *http.ServeMux
	registered   []domain.Registration
	optionsPaths map[string]bool
}

func NewRegistry(opts Options) *Registry {
	if len(opts.DefaultCORSOrigins) == 0 {
		opts.DefaultCORSOrigins = []string{"*"}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		opts:         opts,
		mux:          http.NewServeMux(),
		optionsPaths: make(map[string]bool),
	}
}

// Register valida a declaração, persiste o limite da rota (se houver) e liga
// o entrypoint no mux. Para rotas mutantes cobertas pela política de CORS,
// registra também a rota OPTIONS correspondente, sem auth nem rate limit.
func (g *Registry) Register(ctx context.Context, reg domain.Registration, fn RouteFunc) error {
	normalizeCORS(&reg, g.opts.DefaultCORSOrigins)

	if err := reg.Validate(); err != nil {
		return err
	}
	if reg.AuthRequired && g.opts.Auth == nil {
		return errors.New("route requires auth but no auth gate is configured")
	}
	if reg.RateLimit != nil {
		if g.opts.Limiter == nil {
			return errors.New("route declares a rate limit but no limiter is configured")
		}
		if err := g.opts.Limiter.Register(ctx, reg.Path, reg.RateLimit.PerMinute); err != nil {
			return err
		}
	}

	g.mux.Handle(reg.Method+" "+reg.Path, g.entrypoint(reg, fn))
	g.registered = append(g.registered, reg)

	if reg.Mutating() && reg.CORSMethodAllowed() && !g.optionsPaths[reg.Path] {
		options := reg
		options.Method = http.MethodOptions
		options.AuthRequired = false
		options.RateLimit = nil
		options.Expected = nil

		g.mux.Handle("OPTIONS "+options.Path, g.entrypoint(options, fn))
		g.optionsPaths[reg.Path] = true
	}
	return nil
}

func (g *Registry) entrypoint(reg domain.Registration, fn RouteFunc) *Entrypoint {
	return &Entrypoint{
		reg:      reg,
		fn:       fn,
		auth:     g.opts.Auth,
		limiter:  g.opts.Limiter,
		monitor:  g.opts.Monitor,
		log:      g.opts.Log,
		trustXFF: g.opts.TrustXForwardedFor,
		now:      g.opts.Now,
	}
}

// RateLimited devolve as rotas registradas com limite declarado, na ordem de
// registro. Usada pela rota de introspecção /v1/rate-limit.
func (g *Registry) RateLimited() []domain.Registration {
	var out []domain.Registration
	for _, reg := range g.registered {
		if reg.RateLimit != nil {
			out = append(out, reg)
		}
	}
	return out
}

// Handler devolve o dispatcher pronto para servir.
func (g *Registry) Handler() http.Handler {
	return g.mux
}

func normalizeCORS(reg *domain.Registration, defaultOrigins []string) {
	if len(reg.CORS.AllowedMethods) == 0 {
		reg.CORS.AllowedMethods = []string{"*"}
	}
	if len(reg.CORS.AllowedOrigins) == 0 {
		reg.CORS.AllowedOrigins = defaultOrigins
	}
}
