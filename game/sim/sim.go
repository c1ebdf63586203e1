package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/planner"
)

// ErrDone signals the end of the frame stream. It is the only error a
// finished, healthy run returns from Next.
var ErrDone = errors.New("simulation done")

// DefaultMaxTicks bounds runs whose options leave MaxTicks zero. Any
// winnable run finishes far earlier; the bound only exists so a
// fallback-policy run on a pathological board cannot loop forever
// chasing unreachable food.
const DefaultMaxTicks = 100000

// End reasons reported by Result.
const (
	ReasonWon        = "board-filled"
	ReasonNoSafeMove = "no-safe-move"
	ReasonTickBudget = "tick-budget"
	ReasonAborted    = "aborted"
	ReasonRunning    = "running"
)

// Options configure a run. The zero value starts at cell 0 with seed 0
// and the default tick budget.
type Options struct {
	Start    board.Cell `json:"start" yaml:"start"`
	Seed     int64      `json:"seed" yaml:"seed"`
	MaxTicks int        `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// Result summarizes a run's progress or outcome.
type Result struct {
	Ticks       int    `json:"ticks"`
	Score       int    `json:"score"`
	CellsFilled int    `json:"cells_filled"`
	CellCount   int    `json:"cell_count"`
	Won         bool   `json:"won"`
	Done        bool   `json:"done"`
	Reason      string `json:"reason"`
	Strategy    string `json:"strategy"`
}

// Simulation owns one autoplay run: board, planner, rng and state.
// It is not safe for concurrent use; run one goroutine per Simulation.
type Simulation struct {
	graph   *board.Graph
	plan    planner.Planner
	opts    Options
	rng     *rand.Rand
	state   *engine.State
	started bool // initial frame already emitted
	emitted int  // frames handed out so far
	ended   bool
	reason  string
}

// New validates the options against the board and prepares the run.
// The planner is selected once per Simulation; construction fails only
// on an invalid start cell or tick budget.
func New(g *board.Graph, opts Options) (*Simulation, error) {
	if !g.Contains(opts.Start) {
		return nil, fmt.Errorf("start cell %d outside board of %d cells", opts.Start, g.CellCount())
	}
	if opts.MaxTicks < 0 {
		return nil, fmt.Errorf("negative max ticks %d", opts.MaxTicks)
	}
	if opts.MaxTicks == 0 {
		opts.MaxTicks = DefaultMaxTicks
	}

	s := &Simulation{
		graph: g,
		plan:  planner.New(g),
		opts:  opts,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rewinds the run to its initial state, reseeding the rng so the
// regenerated frame sequence is identical to the first one.
func (s *Simulation) Reset() error {
	s.rng = rand.New(rand.NewSource(s.opts.Seed))

	st, err := engine.NewState(s.graph, s.opts.Start, s.rng)
	if err != nil {
		return err
	}

	s.state = st
	s.started = false
	s.emitted = 0
	s.ended = false
	s.reason = ReasonRunning
	return nil
}

// Next resolves the stream's next frame. The first call emits the
// initial state; every later call runs one full tick. After the run
// ends every call returns ErrDone, except that a broken safety
// guarantee (engine.ErrIllegalMove) aborts the stream with that error.
func (s *Simulation) Next() (engine.Frame, error) {
	if s.ended {
		return engine.Frame{}, ErrDone
	}

	if !s.started {
		s.started = true
		s.emitted++
		if s.state.Over {
			// A start on a full board ends before any move.
			s.finish()
		}
		return engine.EmitFrame(s.graph, s.state), nil
	}

	if s.state.Over || s.state.Tick >= s.opts.MaxTicks {
		s.finish()
		return engine.Frame{}, ErrDone
	}

	next, err := s.plan.Next(s.state)
	if err != nil {
		if errors.Is(err, planner.ErrNoSafeMove) {
			s.ended = true
			s.reason = ReasonNoSafeMove
			return engine.Frame{}, ErrDone
		}
		s.ended = true
		s.reason = ReasonAborted
		return engine.Frame{}, err
	}

	if err := engine.Advance(s.graph, s.state, next, s.rng); err != nil {
		// The planner broke the safety guarantee; surface it loudly.
		s.ended = true
		s.reason = ReasonAborted
		return engine.Frame{}, err
	}

	frame := engine.EmitFrame(s.graph, s.state)
	s.emitted++
	if s.state.Over || s.state.Tick >= s.opts.MaxTicks {
		s.finish()
	}
	return frame, nil
}

// FramesEmitted returns how many frames Next has handed out since the
// last Reset. Persistence uses it to replay a run to the same point.
func (s *Simulation) FramesEmitted() int {
	return s.emitted
}

func (s *Simulation) finish() {
	s.ended = true
	switch {
	case s.state.Won:
		s.reason = ReasonWon
	case s.state.Tick >= s.opts.MaxTicks:
		s.reason = ReasonTickBudget
	default:
		s.reason = ReasonNoSafeMove
	}
}

// Run drains the stream and returns every frame of the run, including
// the initial one. A clean end (win, no safe move, tick budget) is not
// an error; only a broken invariant is.
func (s *Simulation) Run() ([]engine.Frame, error) {
	var frames []engine.Frame
	for {
		frame, err := s.Next()
		if errors.Is(err, ErrDone) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}

// State exposes the current game state for inspection. Callers must
// not mutate it.
func (s *Simulation) State() *engine.State {
	return s.state
}

// Board returns the simulation's (immutable) board graph.
func (s *Simulation) Board() *board.Graph {
	return s.graph
}

// Options returns the options the run was created with.
func (s *Simulation) Options() Options {
	return s.opts
}

// Done reports whether the stream has ended.
func (s *Simulation) Done() bool {
	return s.ended
}

// Result summarizes the run so far.
func (s *Simulation) Result() Result {
	reason := s.reason
	if !s.ended {
		reason = ReasonRunning
	}
	return Result{
		Ticks:       s.state.Tick,
		Score:       s.state.Score,
		CellsFilled: s.state.Length(),
		CellCount:   s.graph.CellCount(),
		Won:         s.state.Won,
		Done:        s.ended,
		Reason:      reason,
		Strategy:    s.plan.Strategy(),
	}
}
