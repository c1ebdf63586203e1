package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/sim"
)

// MaxTicksPerAdvance bounds one Advance call so a single request cannot
// stall a server; RunAll loops internally instead.
const MaxTicksPerAdvance = 10000

var ErrInvalidTickCount = errors.New("invalid tick count")

// runService is the default RunService implementation.
type runService struct {
	runs    RunManager
	configs ConfigManager
}

// NewRunService creates a RunService backed by the given managers.
func NewRunService(runs RunManager, configs ConfigManager) RunService {
	return &runService{runs: runs, configs: configs}
}

func (s *runService) CreateRun(ctx context.Context, configName string, opts *sim.Options) (*RunInfo, error) {
	cfg, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configName, err)
	}

	runOpts := cfg.Run
	if opts != nil {
		runOpts = *opts
	}

	configID := configName
	if configID == "" {
		configID = config.DefaultConfigName
	}

	run, err := s.runs.Create("", cfg, configID, runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return s.info(run), nil
}

func (s *runService) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	s.runs.UpdateLastAccessed(runID)
	return s.info(run), nil
}

func (s *runService) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	runs := s.runs.List()
	infos := make([]*RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, s.info(run))
	}
	return infos, nil
}

func (s *runService) DeleteRun(ctx context.Context, runID string) error {
	return s.runs.Delete(runID)
}

func (s *runService) Advance(ctx context.Context, runID string, ticks int) (*AdvanceResult, error) {
	if ticks < 1 || ticks > MaxTicksPerAdvance {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidTickCount, ticks, MaxTicksPerAdvance)
	}

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}

	// Save takes the run lock to snapshot the descriptor, so it must
	// only be called after the lock is released.
	run.Mu.Lock()
	frames := make([]engine.Frame, 0, ticks)
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			run.Mu.Unlock()
			return nil, err
		}
		frame, err := run.Sim.Next()
		if errors.Is(err, sim.ErrDone) {
			break
		}
		if err != nil {
			run.Mu.Unlock()
			return nil, fmt.Errorf("run %s aborted: %w", runID, err)
		}
		frames = append(frames, frame)
	}
	result := run.Sim.Result()
	run.Mu.Unlock()

	s.runs.UpdateLastAccessed(runID)
	s.runs.Save(runID)

	return &AdvanceResult{RunID: run.ID, Frames: frames, Result: result}, nil
}

func (s *runService) RunAll(ctx context.Context, runID string) (*AdvanceResult, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}

	run.Mu.Lock()
	var frames []engine.Frame
	for {
		if err := ctx.Err(); err != nil {
			run.Mu.Unlock()
			return nil, err
		}
		frame, err := run.Sim.Next()
		if errors.Is(err, sim.ErrDone) {
			break
		}
		if err != nil {
			run.Mu.Unlock()
			return nil, fmt.Errorf("run %s aborted: %w", runID, err)
		}
		frames = append(frames, frame)
	}
	result := run.Sim.Result()
	run.Mu.Unlock()

	s.runs.UpdateLastAccessed(runID)
	s.runs.Save(runID)

	return &AdvanceResult{RunID: run.ID, Frames: frames, Result: result}, nil
}

func (s *runService) Reset(ctx context.Context, runID string) (*RunInfo, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}

	run.Mu.Lock()
	if err := run.Sim.Reset(); err != nil {
		run.Mu.Unlock()
		return nil, fmt.Errorf("failed to reset run %s: %w", runID, err)
	}
	run.Mu.Unlock()

	s.runs.UpdateLastAccessed(runID)
	s.runs.Save(runID)

	return s.info(run), nil
}

func (s *runService) GetState(ctx context.Context, runID string) (*engine.State, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	s.runs.UpdateLastAccessed(runID)
	return run.Sim.State(), nil
}

func (s *runService) Render(ctx context.Context, runID string) (string, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return "", err
	}

	run.Mu.Lock()
	defer run.Mu.Unlock()
	return engine.RenderState(run.Sim.Board(), run.Sim.State()), nil
}

func (s *runService) ListConfigs(ctx context.Context) ([]*config.Info, error) {
	return s.configs.ListConfigs()
}

func (s *runService) LoadConfig(ctx context.Context, configName string) (*config.RunConfig, error) {
	return s.configs.LoadConfig(configName)
}

func (s *runService) SaveConfig(ctx context.Context, configName string, cfg *config.RunConfig) error {
	return s.configs.SaveConfig(configName, cfg)
}

func (s *runService) info(run *Run) *RunInfo {
	run.Mu.Lock()
	defer run.Mu.Unlock()
	return &RunInfo{
		ID:             run.ID,
		ConfigID:       run.ConfigID,
		ConfigName:     run.Config.Name,
		Options:        run.Sim.Options(),
		Result:         run.Sim.Result(),
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}
}
