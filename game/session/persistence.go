package session

import (
	"time"

	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

// RunPersistence stores and restores run descriptors.
type RunPersistence interface {
	Save(run *service.Run) error
	Load(id string) (*service.Run, error)
	LoadAll() ([]*service.Run, error)
	Delete(id string) error
	Exists(id string) bool
}

// PersistedRunData is the on-disk descriptor of a run. The generated
// frames themselves are never stored; FramesEmitted is enough to replay
// a deterministic run back to the same point.
type PersistedRunData struct {
	ID             string            `json:"id"`
	ConfigID       string            `json:"config_id"`
	Config         *config.RunConfig `json:"config"`
	Options        sim.Options       `json:"options"`
	FramesEmitted  int               `json:"frames_emitted"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}
