package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutdown_duration_seconds",
		Help:    "Total time taken to shut down gracefully",
		Buckets: []float64{1, 5, 10, 15, 20, 25, 30},
	})

	shutdownErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutdown_errors_total",
		Help: "Total number of shutdown errors by component",
	}, []string{"component"})
)

// Func stops one component
type Func func(context.Context) error

type component struct {
	name string
	stop Func
}

// Manager stops registered components in reverse registration order, one at
// a time, so listeners drain before the pool and lock client they use close.
type Manager struct {
	logger     *zap.Logger
	timeout    time.Duration
	mu         sync.Mutex
	components []component
	once       sync.Once
	err        error
}

// NewManager creates a shutdown manager with an overall deadline
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{logger: logger, timeout: timeout}
}

// Register adds a component. Register dependencies before their users.
func (m *Manager) Register(name string, stop Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// RegisterHTTPServer registers anything with an http.Server-style Shutdown
func (m *Manager) RegisterHTTPServer(name string, server interface{ Shutdown(context.Context) error }) {
	m.Register(name, server.Shutdown)
}

// RegisterNoErr registers a stop function that cannot fail
func (m *Manager) RegisterNoErr(name string, fn func()) {
	m.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Wait blocks until SIGINT or SIGTERM, or until ctx is done, then shuts down
func (m *Manager) Wait(ctx context.Context) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		m.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		m.logger.Info("Shutdown requested", zap.Error(context.Cause(ctx)))
	}
	return m.Shutdown()
}

// Shutdown stops every component once. A component that fails or overruns
// the deadline does not prevent the rest from being stopped.
func (m *Manager) Shutdown() error {
	m.once.Do(func() {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		m.mu.Lock()
		components := make([]component, len(m.components))
		copy(components, m.components)
		m.mu.Unlock()

		var errs []error
		for i := len(components) - 1; i >= 0; i-- {
			c := components[i]
			began := time.Now()
			if err := c.stop(ctx); err != nil {
				shutdownErrors.WithLabelValues(c.name).Inc()
				m.logger.Error("Component shutdown failed", zap.String("component", c.name), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				continue
			}
			m.logger.Info("Component stopped",
				zap.String("component", c.name),
				zap.Duration("elapsed", time.Since(began)),
			)
		}

		shutdownDuration.Observe(time.Since(start).Seconds())
		m.err = errors.Join(errs...)
		if m.err != nil {
			m.logger.Error("Graceful shutdown completed with errors", zap.Error(m.err))
			return
		}
		m.logger.Info("Graceful shutdown completed", zap.Duration("elapsed", time.Since(start)))
	})
	return m.err
}
