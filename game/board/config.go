package board

import "fmt"

// Board kinds recognized by Build.
const (
	KindRectangle = "rectangle"
	KindRing      = "ring"
	KindCustom    = "custom"
)

// Neighbor modes for the rectangle adapter.
const (
	NeighborMode4 = "4"
	NeighborMode8 = "8"
)

// Dimension limits for the rectangle adapter.
const (
	MinDimension = 1
	MaxDimension = 256
	MaxRingCells = 4096
)

// Config is the serializable description of a board. Exactly one Kind
// is interpreted; fields irrelevant to that kind are ignored.
type Config struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind" yaml:"kind"`

	// Rectangle fields.
	Width        int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height       int    `json:"height,omitempty" yaml:"height,omitempty"`
	NeighborMode string `json:"neighbor_mode,omitempty" yaml:"neighbor_mode,omitempty"`

	// Ring and custom fields.
	Cells int `json:"cells,omitempty" yaml:"cells,omitempty"`

	// Custom fields: explicit undirected edges between cell indexes and
	// optional per-cell render coordinates.
	Edges  [][2]int `json:"edges,omitempty" yaml:"edges,omitempty"`
	Coords []Coord  `json:"coords,omitempty" yaml:"coords,omitempty"`
}

// Validate checks the config without building the graph. Build calls it
// first, so callers only need it for early feedback (config tooling).
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrMalformedBoard)
	}
	switch c.Kind {
	case KindRectangle:
		if c.Width < MinDimension || c.Width > MaxDimension {
			return fmt.Errorf("%w: width %d outside [%d,%d]", ErrMalformedBoard, c.Width, MinDimension, MaxDimension)
		}
		if c.Height < MinDimension || c.Height > MaxDimension {
			return fmt.Errorf("%w: height %d outside [%d,%d]", ErrMalformedBoard, c.Height, MinDimension, MaxDimension)
		}
		if c.Width*c.Height < 2 {
			return fmt.Errorf("%w: %dx%d rectangle has no room for a snake", ErrMalformedBoard, c.Width, c.Height)
		}
		switch c.NeighborMode {
		case "", NeighborMode4, NeighborMode8:
		default:
			return fmt.Errorf("%w: unknown neighbor mode %q", ErrMalformedBoard, c.NeighborMode)
		}
	case KindRing:
		if c.Cells < 3 || c.Cells > MaxRingCells {
			return fmt.Errorf("%w: ring needs 3..%d cells, got %d", ErrMalformedBoard, MaxRingCells, c.Cells)
		}
	case KindCustom:
		if c.Cells < 2 {
			return fmt.Errorf("%w: custom board needs at least 2 cells, got %d", ErrMalformedBoard, c.Cells)
		}
		if len(c.Edges) == 0 {
			return fmt.Errorf("%w: custom board has no edges", ErrMalformedBoard)
		}
		if len(c.Coords) != 0 && len(c.Coords) != c.Cells {
			return fmt.Errorf("%w: %d coords for %d cells", ErrMalformedBoard, len(c.Coords), c.Cells)
		}
	case "":
		return fmt.Errorf("%w: missing board kind", ErrMalformedBoard)
	default:
		return fmt.Errorf("%w: unknown board kind %q", ErrMalformedBoard, c.Kind)
	}
	return nil
}

// Build constructs the Graph described by cfg. It is the single
// construction entry point; adapters are selected by cfg.Kind.
func Build(cfg *Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindRectangle:
		mode := cfg.NeighborMode
		if mode == "" {
			mode = NeighborMode4
		}
		return Rectangle(cfg.Width, cfg.Height, mode)
	case KindRing:
		return Ring(cfg.Cells)
	case KindCustom:
		return Custom(cfg.Cells, cfg.Edges, cfg.Coords)
	default:
		return nil, fmt.Errorf("%w: unknown board kind %q", ErrMalformedBoard, cfg.Kind)
	}
}
