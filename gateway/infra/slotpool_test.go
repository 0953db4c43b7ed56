package infra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSlotPool_AcquireAndRelease(t *testing.T) {
	pool := NewSlotPool(1)

	release, ok := pool.Acquire(context.Background())
	require.True(t, ok)

	// pool cheio: segunda aquisição espera até o ctx cancelar
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok = pool.Acquire(ctx)
	require.False(t, ok)

	release()

	release2, ok := pool.Acquire(context.Background())
	require.True(t, ok)
	release2()
}
