package session

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
)

// Manager handles run lifecycle and implements service.RunManager.
type Manager struct {
	runs        map[string]*service.Run
	persistence RunPersistence
	mu          sync.RWMutex
}

// NewManager creates an in-memory run manager.
func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*service.Run),
	}
}

// NewManagerWithPersistence creates a run manager that saves run
// descriptors through persistence and restores them at startup.
func NewManagerWithPersistence(persistence RunPersistence) (*Manager, error) {
	m := &Manager{
		runs:        make(map[string]*service.Run),
		persistence: persistence,
	}

	runs, err := persistence.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to restore runs: %w", err)
	}
	for _, run := range runs {
		m.runs[run.ID] = run
	}

	return m, nil
}

// Create builds a new run from the given configuration. An empty id is
// replaced with a fresh uuid.
func (m *Manager) Create(id string, cfg *config.RunConfig, configID string, opts sim.Options) (*service.Run, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[id]; exists {
		return nil, ErrRunAlreadyExists
	}

	g, err := board.Build(&cfg.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}
	s, err := sim.New(g, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	run := &service.Run{
		ID:             id,
		ConfigID:       configID,
		Sim:            s,
		Config:         cfg,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.runs[id] = run

	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			log.Printf("Warning: failed to persist run %s: %v", id, err)
		}
	}

	return run, nil
}

// Get retrieves a run by id.
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// List returns all runs sorted by creation time, newest first.
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// Delete removes a run and its persisted descriptor.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(m.runs, id)

	if m.persistence != nil {
		if err := m.persistence.Delete(id); err != nil {
			log.Printf("Warning: failed to delete persisted run %s: %v", id, err)
		}
	}

	return nil
}

// UpdateLastAccessed bumps the run's access timestamp.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	run.LastAccessedAt = time.Now()
	return nil
}

// DeleteFromMemory removes a run from memory without touching its
// persisted descriptor. Used when the descriptor file was removed out
// of band and memory needs to catch up.
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return ErrRunNotFound
	}
	delete(m.runs, id)
	return nil
}

// CleanupExpired removes runs not accessed within maxAge and returns
// how many were removed. Persisted descriptors are removed too.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, run := range m.runs {
		if run.LastAccessedAt.Before(cutoff) {
			delete(m.runs, id)
			if m.persistence != nil {
				if err := m.persistence.Delete(id); err != nil {
					log.Printf("Warning: failed to delete persisted run %s: %v", id, err)
				}
			}
			removed++
		}
	}
	return removed
}

// Save persists the run's current descriptor, if persistence is
// configured.
func (m *Manager) Save(id string) error {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()

	if !ok {
		return ErrRunNotFound
	}
	if m.persistence == nil {
		return nil
	}
	return m.persistence.Save(run)
}
