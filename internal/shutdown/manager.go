package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"photo-restorer/internal/logger"
)

const (
	component      = "shutdown"
	DefaultTimeout = 10 * time.Second
)

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type entry struct {
	name   string
	target Shutdownable
}

// Manager shuts registered components down in reverse registration
// order, once, giving each at most the configured timeout.
type Manager struct {
	mu      sync.Mutex
	entries []entry
	logger  logger.Logger
	timeout time.Duration
	once    sync.Once
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewManager(log logger.Logger, timeout time.Duration) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger:  log,
		timeout: timeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m *Manager) Register(name string, target Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry{name: name, target: target})
}

// Listen calls onSignal when SIGINT or SIGTERM arrives. onSignal is
// expected to end the event loop; the sequence itself runs via Shutdown.
func (m *Manager) Listen(onSignal func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			m.logger.Info(component, "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			onSignal()
		case <-m.ctx.Done():
		}
	}()
}

// Shutdown runs the sequence. Later calls return immediately.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.cancel()

		m.mu.Lock()
		entries := make([]entry, len(m.entries))
		copy(entries, m.entries)
		m.mu.Unlock()

		m.logger.Info(component, "shutdown sequence initiated", map[string]interface{}{
			"components": len(entries),
		})

		for i := len(entries) - 1; i >= 0; i-- {
			m.run(entries[i])
		}

		m.logger.Info(component, "shutdown sequence completed", nil)
		close(m.done)
	})
}

func (m *Manager) run(e entry) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.target.Shutdown()
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-done:
		m.logger.Debug(component, "component stopped", map[string]interface{}{"component": e.name})
	case <-timer.C:
		m.logger.Warning(component, "component shutdown timeout", map[string]interface{}{
			"component": e.name,
		})
	}
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Done is closed when the sequence has completed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
