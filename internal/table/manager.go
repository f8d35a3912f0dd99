package table

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/game"
)

// Manager owns a set of table actors and their goroutines.
type Manager struct {
	logger *log.Logger
	clock  quartz.Clock

	mu     sync.RWMutex
	actors map[string]*Actor
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates an empty manager.
func NewManager(logger *log.Logger, clock quartz.Clock) *Manager {
	return &Manager{
		logger: logger.WithPrefix("manager"),
		clock:  clock,
		actors: make(map[string]*Actor),
	}
}

// CreateTable registers a table. If the manager is already running the
// actor starts immediately.
func (m *Manager) CreateTable(id string, cfg Config, opts ...game.TableOption) (*Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.actors[id]; exists {
		return nil, fmt.Errorf("table %s already exists", id)
	}
	a, err := NewActor(id, cfg,
		WithLogger(m.logger.WithPrefix("table")),
		WithClock(m.clock),
		WithTableOptions(opts...),
	)
	if err != nil {
		return nil, err
	}
	m.actors[id] = a
	if m.group != nil {
		m.run(a)
	}
	m.logger.Info("Created table", "table", id, "stakes", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind), "seats", cfg.MaxSeats)
	return a, nil
}

// Table returns the actor for id.
func (m *Manager) Table(id string) (*Actor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actors[id]
	return a, ok
}

// Tables returns every actor ordered by id.
func (m *Manager) Tables() []*Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Actor, 0, len(m.actors))
	for _, a := range m.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Start runs every actor until ctx is cancelled or Shutdown is called.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.group != nil {
		return
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.group, m.ctx = errgroup.WithContext(m.ctx)
	for _, a := range m.actors {
		m.run(a)
	}
	m.logger.Info("Manager started", "tables", len(m.actors))
}

func (m *Manager) run(a *Actor) {
	ctx := m.ctx
	m.group.Go(func() error {
		return a.Run(ctx)
	})
}

// Shutdown stops every actor and waits for them, or for ctx.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	group, cancel := m.group, m.cancel
	m.mu.Unlock()
	if group == nil {
		return nil
	}
	cancel()

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		m.logger.Info("Manager stopped")
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for tables: %w", ctx.Err())
	}
}
