package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"api-gateway/gateway/domain"
)

// RateLimiter concentra a regra de admissão: no máximo N requisições por
// (identidade, rota) na janela móvel de 60 segundos, correta sob
// concorrência arbitrária entre instâncias do gateway.
//
// Toda a coordenação entre requisições vive no script atômico do store;
// aqui não há lock nenhum. O mapa de limites por rota é preenchido no
// startup e efetivamente imutável depois disso.
type RateLimiter struct {
	store  domain.WindowStore
	hasher domain.Hasher
	limits map[string]int
	log    logrus.FieldLogger
	now    func() time.Time
}

type RateLimiterOption func(*RateLimiter)

func WithRateLimiterLogger(log logrus.FieldLogger) RateLimiterOption {
	return func(l *RateLimiter) { l.log = log }
}

func WithRateLimiterClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) { l.now = now }
}

func NewRateLimiter(store domain.WindowStore, hasher domain.Hasher, opts ...RateLimiterOption) *RateLimiter {
	l := &RateLimiter{
		store:  store,
		hasher: hasher,
		limits: make(map[string]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register persiste o limite da rota no store (sobrescrevendo o valor
// anterior) e o guarda no mapa local lido a cada requisição.
// Chamado uma vez por rota, no startup.
func (l *RateLimiter) Register(ctx context.Context, path string, perMinute int) error {
	l.limits[path] = perMinute
	if err := l.store.SetRouteLimit(ctx, path, perMinute); err != nil {
		return l.storeErr("register", path, err)
	}
	return nil
}

// Key monta a chave da janela para a identidade+rota. Identidades de escopo
// private passam pelo hash de mão única antes de virar chave.
func (l *RateLimiter) Key(scope domain.Scope, identifier, path string) string {
	if scope == domain.ScopePrivate {
		identifier = l.hasher.Hash(identifier)
	}
	return identifier + ":" + path
}

// Check executa a verificação atômica contra a janela.
//
// Na admissão, Remaining = limit - count - 1 (a vaga desta requisição já
// contada). Na rejeição, nenhuma vaga é consumida e o erro carrega a classe
// RATE_LIMIT_EXCEEDED. A operação nunca é repetida em caso de timeout do
// store: repetir poderia contar em dobro.
func (l *RateLimiter) Check(ctx context.Context, scope domain.Scope, identifier, path string) (domain.Decision, error) {
	limit, ok := l.limits[path]
	if !ok {
		return domain.Decision{}, domain.Ef(domain.KindUnexpected, "no rate limit registered for %s", path)
	}

	nowMs := l.now().UnixMilli()
	count, allowed, err := l.store.IncrWindow(ctx, l.Key(scope, identifier, path), nowMs, limit)
	if err != nil {
		return domain.Decision{}, l.storeErr("check", path, err)
	}

	if !allowed {
		return domain.Decision{Allowed: false, Limit: limit, Remaining: 0},
			domain.E(domain.KindRateLimitExceeded, "Rate limit exceeded.")
	}

	return domain.Decision{Allowed: true, Limit: limit, Remaining: limit - count - 1}, nil
}

// Query conta a janela sem inserir. Por ser leitura idempotente, uma única
// repetição é tolerada quando o store falha.
//
// O limite é lido de volta do store (e não do mapa local) para refletir a
// instância que registrou por último.
func (l *RateLimiter) Query(ctx context.Context, scope domain.Scope, identifier, path string) (domain.Decision, error) {
	limit, err := l.store.RouteLimit(ctx, path)
	if err != nil {
		if limit, err = l.store.RouteLimit(ctx, path); err != nil {
			return domain.Decision{}, l.storeErr("query", path, err)
		}
	}

	nowMs := l.now().UnixMilli()
	key := l.Key(scope, identifier, path)

	count, err := l.store.CountWindow(ctx, key, nowMs)
	if err != nil {
		if count, err = l.store.CountWindow(ctx, key, nowMs); err != nil {
			return domain.Decision{}, l.storeErr("query", path, err)
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{Allowed: count < limit, Limit: limit, Remaining: remaining}, nil
}

// storeErr loga a causa real e devolve o erro transiente que o cliente vê.
// Um timeout do store nunca passa batido como admissão.
func (l *RateLimiter) storeErr(op, path string, err error) error {
	if l.log != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"op":   op,
			"path": path,
		}).Error("rate limit store failure")
	}
	return domain.E(domain.KindStoreUnavailable, "Service temporarily unavailable.")
}
