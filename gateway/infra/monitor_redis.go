package infra

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"api-gateway/gateway/domain"
)

// RedisMonitorSink grava um entry por requisição em um stream do redis
// (XADD), com MAXLEN aproximado para o stream não crescer sem limite.
type RedisMonitorSink struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

type RedisMonitorOption func(*RedisMonitorSink)

func WithMonitorStream(name string) RedisMonitorOption {
	return func(s *RedisMonitorSink) { s.stream = strings.TrimSpace(name) }
}

func WithMonitorMaxLen(n int64) RedisMonitorOption {
	return func(s *RedisMonitorSink) { s.maxLen = n }
}

func NewRedisMonitorSink(rdb *redis.Client, opts ...RedisMonitorOption) *RedisMonitorSink {
	s := &RedisMonitorSink{
		rdb:    rdb,
		stream: "monitor",
		maxLen: 100000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implementa domain.Sink.
func (s *RedisMonitorSink) Record(ctx context.Context, ev domain.Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	return s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"id":          ev.ID,
			"name":        ev.Name,
			"method":      ev.Method,
			"url":         ev.URL,
			"duration":    ev.Duration,
			"status":      ev.Status,
			"status_code": ev.StatusCode,
			"remote_addr": ev.RemoteAddr,
			"at":          at.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}
