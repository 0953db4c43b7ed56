package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sorted sets no redis FTW. O Lua garante que nenhum outro cliente executa
// entre a poda e a inserção; é isso que serializa decisões concorrentes
// sobre a mesma chave.
// Algoritmo adaptado de:
// https://medium.com/@sahiljadon/rate-limiting-using-redis-lists-and-sorted-sets-9b42bc192222
var incrWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1] - 60 * 1000)

local count = tonumber(redis.call('ZCARD', KEYS[1]))

if count < tonumber(ARGV[2])
then
    redis.call('ZADD', KEYS[1], ARGV[1], ARGV[1])
    return count .. ':pass'
else
    return count .. ':limit-exceeded'
end
`)

// Variante somente-leitura: poda e conta, sem inserir.
var countWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1] - 60 * 1000)
return tonumber(redis.call('ZCARD', KEYS[1]))
`)

// RedisWindowStore implementa domain.WindowStore sobre um redis compartilhado
// entre as instâncias do gateway. O membro inserido é o próprio timestamp em
// milissegundos; colisões no mesmo ms fundem membros e subcontam uma vaga,
// troca deliberada de exatidão por simplicidade.
type RedisWindowStore struct {
	rdb     *redis.Client
	timeout time.Duration
}

type RedisWindowOption func(*RedisWindowStore)

// WithWindowTimeout limita cada chamada ao store. Um timeout vira erro,
// nunca uma admissão silenciosa.
func WithWindowTimeout(d time.Duration) RedisWindowOption {
	return func(s *RedisWindowStore) { s.timeout = d }
}

func NewRedisWindowStore(rdb *redis.Client, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:     rdb,
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// IncrWindow executa o script de poda+contagem+inserção condicional.
func (s *RedisWindowStore) IncrWindow(ctx context.Context, key string, nowMs int64, limit int) (int, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := incrWindowScript.Run(ctx, s.rdb, []string{key}, nowMs, limit).Result()
	if err != nil {
		return 0, false, fmt.Errorf("rate limit script for key %s: %w", key, err)
	}

	out, ok := res.(string)
	if !ok {
		return 0, false, fmt.Errorf("unexpected script result %T for key %s", res, key)
	}

	countStr, verdict, ok := strings.Cut(out, ":")
	if !ok {
		return 0, false, fmt.Errorf("malformed script result %q for key %s", out, key)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return 0, false, fmt.Errorf("malformed script count %q for key %s: %w", countStr, key, err)
	}

	return count, verdict == "pass", nil
}

// CountWindow poda e conta sem inserir.
func (s *RedisWindowStore) CountWindow(ctx context.Context, key string, nowMs int64) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	count, err := countWindowScript.Run(ctx, s.rdb, []string{key}, nowMs).Int()
	if err != nil {
		return 0, fmt.Errorf("rate limit query for key %s: %w", key, err)
	}
	return count, nil
}

// SetRouteLimit grava rate-limit:<path> -> limite, sobrescrevendo.
func (s *RedisWindowStore) SetRouteLimit(ctx context.Context, path string, perMinute int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, routeLimitKey(path), perMinute, 0).Err(); err != nil {
		return fmt.Errorf("store rate limit for %s: %w", path, err)
	}
	return nil
}

// RouteLimit lê rate-limit:<path>.
func (s *RedisWindowStore) RouteLimit(ctx context.Context, path string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.rdb.Get(ctx, routeLimitKey(path)).Result()
	if err != nil {
		return 0, fmt.Errorf("read rate limit for %s: %w", path, err)
	}
	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("malformed rate limit %q for %s: %w", v, path, err)
	}
	return limit, nil
}

// SetLiveness grava o marcador de vida usado pelo health-check.
func (s *RedisWindowStore) SetLiveness(ctx context.Context, at time.Time) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, "health-check", at.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return fmt.Errorf("store liveness marker: %w", err)
	}
	return nil
}

func routeLimitKey(path string) string { return "rate-limit:" + path }
