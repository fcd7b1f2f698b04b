package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/agentholdem/internal/game"
)

// ErrTableNotFound is returned for unknown table IDs.
var ErrTableNotFound = errors.New("table not found")

// Manager owns every table in the process. Its lock only guards the
// registry; each table serialises its own mutations.
type Manager struct {
	logger *log.Logger
	opts   []TableOption

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewManager returns an empty manager. opts are applied to every table it
// creates.
func NewManager(logger *log.Logger, opts ...TableOption) *Manager {
	return &Manager{
		logger: logger.WithPrefix("manager"),
		opts:   opts,
		tables: make(map[string]*Table),
	}
}

// Create builds and registers a table.
func (m *Manager) Create(cfg TableConfig, opts ...TableOption) (*Table, error) {
	table, err := NewTable(cfg, m.logger, append(slices.Clone(m.opts), opts...)...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[table.ID()]; exists {
		table.Close()
		return nil, fmt.Errorf("table %s already exists", table.ID())
	}
	m.tables[table.ID()] = table
	m.logger.Info("table created", "table", table.ID(), "name", cfg.Name)
	return table, nil
}

// Close closes and unregisters a table.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	table, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	table.Close()
	return nil
}

// Get returns the table with id.
func (m *Manager) Get(id string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[id]
	return table, ok
}

// Tables returns every table ordered by ID.
func (m *Manager) Tables() []*Table {
	m.mu.RLock()
	out := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Table) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}

// List summarises every table ordered by ID.
func (m *Manager) List() []TableInfo {
	tables := m.Tables()
	out := make([]TableInfo, len(tables))
	for i, t := range tables {
		out[i] = t.Info()
	}
	return out
}

// Submit routes a decision to a table.
func (m *Manager) Submit(ctx context.Context, tableID, playerID string, d game.Decision, version uint64) (game.Outcome, error) {
	table, ok := m.Get(tableID)
	if !ok {
		return game.Outcome{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	return table.Submit(ctx, playerID, d, version)
}

// Shutdown closes every table.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	tables := m.tables
	m.tables = make(map[string]*Table)
	m.mu.Unlock()

	for _, t := range tables {
		t.Close()
	}
}
