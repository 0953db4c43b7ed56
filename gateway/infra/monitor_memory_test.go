package infra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"api-gateway/gateway/domain"
)

func TestMemoryMonitorSink_Record(t *testing.T) {
	sink := NewMemoryMonitorSink()

	ev := domain.Event{
		ID:         "id-1",
		Name:       domain.EventAPIRequest,
		Method:     "POST",
		URL:        "/v1/user",
		Duration:   0.012,
		Status:     "200 OK",
		StatusCode: 200,
		RemoteAddr: "10.0.0.1",
		At:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sink.Record(context.Background(), ev))

	events := sink.Events()
	require.Len(t, events, 1)
	require.Equal(t, ev, events[0])

	// Events devolve cópia: mutação no retorno não afeta o sink
	events[0].ID = "mutated"
	require.Equal(t, "id-1", sink.Events()[0].ID)
}
