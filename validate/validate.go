// Command validate checks every board/run configuration file in a
// directory. It checks:
//   - JSON/YAML structure and required fields
//   - Board well-formedness (dimensions, edge list, isolated cells)
//   - Connectivity: every cell reachable from every other cell
//   - Run options (start cell on the board, non-negative tick budget)
//
// For valid files it reports the board shape and the autoplay strategy
// a run would use.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/planner"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	cfg, err := config.Parse(data, filepath.Ext(filePath))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Parse already proved the board builds; rebuild it here for the
	// informational report.
	g, err := board.Build(&cfg.Board)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Kind: %s", cfg.Board.Kind))
	if cfg.Board.Kind == board.KindRectangle {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", cfg.Board.Width, cfg.Board.Height))
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Cells: %d, edges: %d", g.CellCount(), g.EdgeCount()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Start cell: %d, seed: %d", cfg.Run.Start, cfg.Run.Seed))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Strategy: %s", planner.New(g).Strategy()))

	return result
}

// configFiles lists the supported config files under dir, sorted by
// name.
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// main scans the config directory (first argument, default "../configs")
// and validates each file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
