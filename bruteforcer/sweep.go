package main

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/snakelights/snakelights/game/sim"
)

// Outcome is the final result of one swept seed.
type Outcome struct {
	Seed   int64
	Result sim.Result
	Err    error
}

// sweep plays out count runs starting at firstSeed, spread across a
// worker pool, and returns one outcome per seed.
func sweep(client *Client, configID string, base sim.Options, firstSeed int64, count, workers int) []Outcome {
	seeds := make(chan int64)
	outcomes := make([]Outcome, 0, count)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seed := range seeds {
				outcome := sweepOne(client, configID, base, seed)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < count; i++ {
		seeds <- firstSeed + int64(i)
	}
	close(seeds)
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool {
		return better(outcomes[i], outcomes[j])
	})
	return outcomes
}

func sweepOne(client *Client, configID string, base sim.Options, seed int64) Outcome {
	opts := base
	opts.Seed = seed

	info, err := client.CreateRun(configID, &opts)
	if err != nil {
		return Outcome{Seed: seed, Err: err}
	}
	defer func() {
		if err := client.DeleteRun(info.ID); err != nil {
			log.Printf("Failed to delete run %s: %v", info.ID, err)
		}
	}()

	result, err := client.RunToEnd(info.ID)
	if err != nil {
		return Outcome{Seed: seed, Err: err}
	}
	return Outcome{Seed: seed, Result: *result}
}

// better ranks outcomes: wins first, then more cells filled, then
// fewer ticks, then lower seed for a stable order.
func better(a, b Outcome) bool {
	if (a.Err == nil) != (b.Err == nil) {
		return a.Err == nil
	}
	if a.Result.Won != b.Result.Won {
		return a.Result.Won
	}
	if a.Result.CellsFilled != b.Result.CellsFilled {
		return a.Result.CellsFilled > b.Result.CellsFilled
	}
	if a.Result.Ticks != b.Result.Ticks {
		return a.Result.Ticks < b.Result.Ticks
	}
	return a.Seed < b.Seed
}

func report(outcomes []Outcome, top int) {
	wins := 0
	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
		} else if o.Result.Won {
			wins++
		}
	}

	fmt.Printf("\n=== Seed sweep: %d seeds, %d wins, %d errors ===\n",
		len(outcomes), wins, failures)
	fmt.Printf("%-12s %-6s %-8s %-10s %s\n", "SEED", "WON", "TICKS", "FILLED", "REASON")

	if top > len(outcomes) {
		top = len(outcomes)
	}
	for _, o := range outcomes[:top] {
		if o.Err != nil {
			fmt.Printf("%-12d %-6s %-8s %-10s error: %v\n", o.Seed, "-", "-", "-", o.Err)
			continue
		}
		fmt.Printf("%-12d %-6t %-8d %d/%-8d %s\n",
			o.Seed, o.Result.Won, o.Result.Ticks,
			o.Result.CellsFilled, o.Result.CellCount, o.Result.Reason)
	}
}
