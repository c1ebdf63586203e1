// Command preview runs a configuration locally and shows the result,
// either as an animated text rendering in the terminal or as a JSON
// frame dump suitable for feeding a display driver.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/sim"
)

func main() {
	cmd := &cli.Command{
		Name:  "preview",
		Usage: "Run a board configuration and preview its frame sequence",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a config file (JSON or YAML); empty uses the built-in 8x8 board",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed override for food placement",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "max-ticks",
				Usage: "Tick budget override (0 keeps the config's value)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Animate the run in the terminal",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "delay",
						Usage: "Delay between frames in milliseconds",
						Value: 100,
					},
				},
				Action: runPlay,
			},
			{
				Name:   "dump",
				Usage:  "Print the full frame sequence as JSON",
				Action: runDump,
			},
		},
		DefaultCommand: "play",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the flags shared by all subcommands and builds the
// board and simulation they operate on.
func loadConfig(cmd *cli.Command) (*board.Graph, *sim.Simulation, error) {
	cfg, err := readConfig(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.Run
	if seed := cmd.Int("seed"); seed >= 0 {
		opts.Seed = int64(seed)
	}
	if maxTicks := cmd.Int("max-ticks"); maxTicks > 0 {
		opts.MaxTicks = int(maxTicks)
	}

	g, err := board.Build(&cfg.Board)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build board: %w", err)
	}
	s, err := sim.New(g, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create simulation: %w", err)
	}
	return g, s, nil
}

func readConfig(path string) (*config.RunConfig, error) {
	if path == "" {
		return config.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := config.Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// runPlay renders each frame to the terminal with a delay between
// ticks, then prints the run summary.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	g, s, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	delay := time.Duration(cmd.Int("delay")) * time.Millisecond

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := s.Next()
		if err != nil {
			if errors.Is(err, sim.ErrDone) {
				break
			}
			return err
		}

		// ANSI clear-screen keeps the board in place between frames.
		fmt.Print("\033[H\033[2J")
		fmt.Printf("tick %d\n\n", frame.Tick)
		fmt.Println(engine.RenderState(g, s.State()))
		time.Sleep(delay)
	}

	result := s.Result()
	fmt.Printf("\nfinished: reason=%s ticks=%d score=%d filled=%d/%d strategy=%s\n",
		result.Reason, result.Ticks, result.Score,
		result.CellsFilled, result.CellCount, result.Strategy)
	return nil
}

// runDump runs the simulation to completion and prints frames plus the
// summary as a single JSON document on stdout.
func runDump(ctx context.Context, cmd *cli.Command) error {
	_, s, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	frames, err := s.Run()
	if err != nil && !errors.Is(err, sim.ErrDone) {
		return err
	}

	out := struct {
		Options sim.Options    `json:"options"`
		Frames  []engine.Frame `json:"frames"`
		Result  sim.Result     `json:"result"`
	}{
		Options: s.Options(),
		Frames:  frames,
		Result:  s.Result(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
