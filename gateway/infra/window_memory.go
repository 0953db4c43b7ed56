package infra

import (
	"context"
	"sync"
	"time"
)

// MemoryWindowStore é uma implementação em memória de domain.WindowStore,
// com a mesma semântica do script Lua (poda, contagem e inserção como uma
// unidade, sob o mutex). Útil para testes e desenvolvimento.
//
// Não é compartilhada entre instâncias e não é indicada para produção.
type MemoryWindowStore struct {
	mu       sync.Mutex
	windows  map[string][]int64
	limits   map[string]int
	liveness time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{
		windows: make(map[string][]int64),
		limits:  make(map[string]int),
	}
}

// prune remove timestamps fora da janela móvel. Igual ao ZREMRANGEBYSCORE do
// script: scores <= nowMs-60000 caem.
func prune(window []int64, nowMs int64) []int64 {
	cutoff := nowMs - 60*1000
	kept := window[:0]
	for _, ts := range window {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}

func (s *MemoryWindowStore) IncrWindow(_ context.Context, key string, nowMs int64, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := prune(s.windows[key], nowMs)
	count := len(window)

	if count < limit {
		// membro == score, como no sorted set: repetições no mesmo ms fundem
		if count == 0 || window[count-1] != nowMs {
			window = append(window, nowMs)
		}
		s.windows[key] = window
		return count, true, nil
	}

	s.windows[key] = window
	return count, false, nil
}

func (s *MemoryWindowStore) CountWindow(_ context.Context, key string, nowMs int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := prune(s.windows[key], nowMs)
	s.windows[key] = window
	return len(window), nil
}

func (s *MemoryWindowStore) SetRouteLimit(_ context.Context, path string, perMinute int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[path] = perMinute
	return nil
}

func (s *MemoryWindowStore) RouteLimit(_ context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits[path], nil
}

func (s *MemoryWindowStore) SetLiveness(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = at
	return nil
}

// Liveness devolve o último marcador gravado (para asserções em teste).
func (s *MemoryWindowStore) Liveness() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveness
}
