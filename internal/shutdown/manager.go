package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"backup-editor/internal/logger"
)

const defaultComponentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// ShutdownFunc adapts a plain function to Shutdownable.
type ShutdownFunc func()

func (f ShutdownFunc) Shutdown() { f() }

type Manager struct {
	components       []Shutdownable
	logger           logger.Logger
	componentTimeout time.Duration
	mu               sync.Mutex
	done             chan struct{}
	ctx              context.Context
	cancel           context.CancelFunc
}

// NewManager creates a manager that gives each component componentTimeout to
// finish. Zero selects the default of ten seconds.
func NewManager(log logger.Logger, componentTimeout time.Duration) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	if componentTimeout <= 0 {
		componentTimeout = defaultComponentTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		components:       make([]Shutdownable, 0),
		logger:           log,
		componentTimeout: componentTimeout,
		done:             make(chan struct{}),
		ctx:              ctx,
		cancel:           cancel,
	}
}

func (m *Manager) Register(component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component)
}

// Listen runs Shutdown followed by onSignal when SIGINT or SIGTERM arrives.
// The returned function stops listening.
func (m *Manager) Listen(onSignal func()) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			if onSignal != nil {
				onSignal()
			}
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}

// Shutdown stops registered components in reverse order. Only the first
// call does any work.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		component := m.components[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			component.Shutdown()
		}()

		select {
		case <-done:
		case <-time.After(m.componentTimeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component_index": i,
				"timeout":         m.componentTimeout.String(),
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
