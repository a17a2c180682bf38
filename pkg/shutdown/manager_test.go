package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_StopsInReverseOrder(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	var order []string
	for _, name := range []string{"database", "redis", "http"} {
		name := name
		m.RegisterNoErr(name, func() { order = append(order, name) })
	}

	require.NoError(t, m.Shutdown())
	assert.Equal(t, []string{"http", "redis", "database"}, order)
}

func TestManager_ContinuesAfterFailure(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	stopped := false
	m.RegisterNoErr("database", func() { stopped = true })
	m.Register("http", func(context.Context) error { return errors.New("listener busy") })

	err := m.Shutdown()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http: listener busy")
	assert.True(t, stopped)
}

func TestManager_ShutdownRunsOnce(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	calls := 0
	m.RegisterNoErr("pool", func() { calls++ })

	require.NoError(t, m.Shutdown())
	require.NoError(t, m.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestManager_WaitReturnsWhenContextDone(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	stopped := make(chan struct{})
	m.RegisterNoErr("http", func() { close(stopped) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, m.Wait(ctx))
	select {
	case <-stopped:
	default:
		t.Fatal("component was not stopped")
	}
}

func TestManager_ComponentsShareDeadline(t *testing.T) {
	m := NewManager(zap.NewNop(), 20*time.Millisecond)

	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown()

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
