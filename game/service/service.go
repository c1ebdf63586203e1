package service

import (
	"context"
	"sync"
	"time"

	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/sim"
)

// RunService defines all run-related operations.
type RunService interface {
	// Run lifecycle
	CreateRun(ctx context.Context, configName string, opts *sim.Options) (*RunInfo, error)
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error

	// Frame generation
	Advance(ctx context.Context, runID string, ticks int) (*AdvanceResult, error)
	RunAll(ctx context.Context, runID string) (*AdvanceResult, error)
	Reset(ctx context.Context, runID string) (*RunInfo, error)
	GetState(ctx context.Context, runID string) (*engine.State, error)
	Render(ctx context.Context, runID string) (string, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*config.Info, error)
	LoadConfig(ctx context.Context, configName string) (*config.RunConfig, error)
	SaveConfig(ctx context.Context, configName string, cfg *config.RunConfig) error
}

// RunManager defines run storage operations.
type RunManager interface {
	Create(id string, cfg *config.RunConfig, configID string, opts sim.Options) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles named run configuration loading.
type ConfigManager interface {
	LoadConfig(name string) (*config.RunConfig, error)
	ListConfigs() ([]*config.Info, error)
	GetDefault() *config.RunConfig
	SaveConfig(name string, cfg *config.RunConfig) error
}

// Run is one live autoplay run. Mu serializes access to Sim, which is
// single-threaded by design.
type Run struct {
	ID             string
	ConfigID       string
	Sim            *sim.Simulation
	Config         *config.RunConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	Mu sync.Mutex
}

// RunInfo is the serializable view of a run.
type RunInfo struct {
	ID             string      `json:"id"`
	ConfigID       string      `json:"config_id"`
	ConfigName     string      `json:"config_name"`
	Options        sim.Options `json:"options"`
	Result         sim.Result  `json:"result"`
	CreatedAt      time.Time   `json:"created_at"`
	LastAccessedAt time.Time   `json:"last_accessed_at"`
}

// AdvanceResult carries the frames produced by one Advance or RunAll
// call together with the run's updated summary.
type AdvanceResult struct {
	RunID  string         `json:"run_id"`
	Frames []engine.Frame `json:"frames"`
	Result sim.Result     `json:"result"`
}
