package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/sim"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the name reported for the built-in default.
const DefaultConfigName = "default"

// RunConfig is the file format for a named run: a board description
// plus default simulation options. Run options may be overridden per
// run at creation time.
type RunConfig struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Board       board.Config `json:"board" yaml:"board"`
	Run         sim.Options  `json:"run,omitempty" yaml:"run,omitempty"`
}

// Info describes an available configuration for listings.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	CellCount   int    `json:"cell_count"`
}

// Manager loads, validates and caches run configurations from a
// directory. JSON (.json) and YAML (.yaml, .yml) files are accepted.
type Manager struct {
	configDir string
	configs   map[string]*RunConfig
	mu        sync.RWMutex
}

// NewManager creates a manager rooted at configDir. The directory must
// exist; an empty directory is fine, the built-in default still works.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	return &Manager{
		configDir: configDir,
		configs:   make(map[string]*RunConfig),
	}, nil
}

// GetDefault returns the built-in default configuration.
func (m *Manager) GetDefault() *RunConfig {
	return Default()
}

// Default is the built-in default configuration: an 8x8 orthogonal
// rectangle.
func Default() *RunConfig {
	return &RunConfig{
		Name:        DefaultConfigName,
		Description: "8x8 rectangle, orthogonal adjacency",
		Board: board.Config{
			Kind:         board.KindRectangle,
			Width:        8,
			Height:       8,
			NeighborMode: board.NeighborMode4,
		},
		Run: sim.Options{Seed: 1},
	}
}

// LoadConfig loads a configuration by name (file name without
// extension). Results are cached; the file's board is built once to
// prove it well-formed.
func (m *Manager) LoadConfig(name string) (*RunConfig, error) {
	if name == "" || name == DefaultConfigName {
		return m.GetDefault(), nil
	}

	m.mu.RLock()
	if cfg, ok := m.configs[name]; ok {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg, ok := m.configs[name]; ok {
		return cfg, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	m.configs[name] = cfg
	return cfg, nil
}

// findFile resolves name to a config file path, trying the supported
// extensions in a fixed order.
func (m *Manager) findFile(name string) (string, error) {
	if ext := filepath.Ext(name); ext != "" {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", ErrConfigNotFound
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// Parse decodes and validates a config document. ext selects the
// decoder (".json" or a YAML extension).
func Parse(data []byte, ext string) (*RunConfig, error) {
	var cfg RunConfig
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a run configuration by building its board, the only
// authoritative well-formedness test, and sanity-checking run options.
func Validate(cfg *RunConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	g, err := board.Build(&cfg.Board)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if !g.Contains(cfg.Run.Start) {
		return fmt.Errorf("config validation: start cell %d outside board of %d cells", cfg.Run.Start, g.CellCount())
	}
	if cfg.Run.MaxTicks < 0 {
		return fmt.Errorf("config validation: negative max_ticks %d", cfg.Run.MaxTicks)
	}
	return nil
}

// ListConfigs returns information about every available configuration,
// the built-in default first, then files sorted by name.
func (m *Manager) ListConfigs() ([]*Info, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	infos := []*Info{m.describe(DefaultConfigName, m.GetDefault())}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		switch strings.ToLower(ext) {
		case ".json", ".yaml", ".yml":
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(names)

	for _, name := range names {
		cfg, err := m.LoadConfig(name)
		if err != nil {
			// Broken files are skipped from listings; the validator
			// command reports them in detail.
			continue
		}
		infos = append(infos, m.describe(name, cfg))
	}

	return infos, nil
}

func (m *Manager) describe(id string, cfg *RunConfig) *Info {
	info := &Info{
		ID:          id,
		Name:        cfg.Name,
		Description: cfg.Description,
		Kind:        cfg.Board.Kind,
	}
	if g, err := board.Build(&cfg.Board); err == nil {
		info.CellCount = g.CellCount()
	}
	return info
}

// SaveConfig validates cfg and writes it as JSON under name.
func (m *Manager) SaveConfig(name string, cfg *RunConfig) error {
	if name == "" || name == DefaultConfigName {
		return fmt.Errorf("%w: reserved config name %q", ErrInvalidConfig, name)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = cfg
	m.mu.Unlock()

	return nil
}
