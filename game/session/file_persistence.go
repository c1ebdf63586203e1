package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

// FilePersistence implements RunPersistence on the file system, one
// JSON descriptor per run.
type FilePersistence struct {
	runsDir string
}

// NewFilePersistence creates a file-based persistence layer rooted at
// runsDir, creating the directory if needed.
func NewFilePersistence(runsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &FilePersistence{runsDir: runsDir}, nil
}

// Save writes the run's descriptor to disk.
func (fp *FilePersistence) Save(run *service.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	run.Mu.Lock()
	data := PersistedRunData{
		ID:             run.ID,
		ConfigID:       run.ConfigID,
		Config:         run.Config,
		Options:        run.Sim.Options(),
		FramesEmitted:  run.Sim.FramesEmitted(),
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}
	run.Mu.Unlock()

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	if err := os.WriteFile(fp.filePath(run.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// Load restores a run from its descriptor: the board and simulation
// are rebuilt from the stored config and replayed to the persisted
// frame count, which determinism makes exact.
func (fp *FilePersistence) Load(id string) (*service.Run, error) {
	path := fp.filePath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrRunNotFound
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var data PersistedRunData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}
	if data.Config == nil {
		return nil, fmt.Errorf("run %s: descriptor has no config", id)
	}

	g, err := board.Build(&data.Config.Board)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	s, err := sim.New(g, data.Options)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}

	for i := 0; i < data.FramesEmitted; i++ {
		if _, err := s.Next(); err != nil {
			if errors.Is(err, sim.ErrDone) {
				break
			}
			return nil, fmt.Errorf("run %s: replay failed at frame %d: %w", id, i, err)
		}
	}

	return &service.Run{
		ID:             data.ID,
		ConfigID:       data.ConfigID,
		Sim:            s,
		Config:         data.Config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// LoadAll restores every persisted run. A broken descriptor fails the
// whole restore so problems surface at startup instead of silently
// dropping runs.
func (fp *FilePersistence) LoadAll() ([]*service.Run, error) {
	entries, err := os.ReadDir(fp.runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []*service.Run
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		run, err := fp.Load(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Delete removes the run's descriptor file.
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.filePath(id))
	if os.IsNotExist(err) {
		return ErrRunNotFound
	}
	return err
}

// Exists reports whether a descriptor file is present for id.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.filePath(id))
	return err == nil
}

func (fp *FilePersistence) filePath(id string) string {
	return filepath.Join(fp.runsDir, id+".json")
}
