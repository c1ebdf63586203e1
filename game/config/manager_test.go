package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/sim"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return m, dir
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config %s: %v", name, err)
	}
}

func TestNewManagerMissingDir(t *testing.T) {
	if _, err := NewManager("/non/existent/dir"); err == nil {
		t.Error("Expected error for missing config directory")
	}
}

func TestGetDefault(t *testing.T) {
	m, _ := newTestManager(t)

	cfg := m.GetDefault()
	if cfg.Name != DefaultConfigName {
		t.Errorf("Expected name %q, got %q", DefaultConfigName, cfg.Name)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config must validate: %v", err)
	}

	g, err := board.Build(&cfg.Board)
	if err != nil {
		t.Fatalf("Default board failed to build: %v", err)
	}
	if g.CellCount() != 64 {
		t.Errorf("Expected 64 cells, got %d", g.CellCount())
	}
}

func TestLoadConfigJSON(t *testing.T) {
	m, dir := newTestManager(t)
	writeConfig(t, dir, "panel.json", `{
		"name": "Panel",
		"board": {"kind": "rectangle", "width": 6, "height": 4, "neighbor_mode": "4"},
		"run": {"start": 3, "seed": 11, "max_ticks": 500}
	}`)

	cfg, err := m.LoadConfig("panel")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Panel" {
		t.Errorf("Expected name Panel, got %q", cfg.Name)
	}
	if cfg.Board.Width != 6 || cfg.Board.Height != 4 {
		t.Errorf("Unexpected board dimensions: %+v", cfg.Board)
	}
	if cfg.Run.Start != 3 || cfg.Run.Seed != 11 || cfg.Run.MaxTicks != 500 {
		t.Errorf("Unexpected run options: %+v", cfg.Run)
	}

	// Cached: a second load returns the same instance.
	again, err := m.LoadConfig("panel")
	if err != nil {
		t.Fatalf("Second LoadConfig failed: %v", err)
	}
	if again != cfg {
		t.Error("Expected the cached config instance")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	m, dir := newTestManager(t)
	writeConfig(t, dir, "strip.yaml", `name: Strip
description: loop strip
board:
  kind: ring
  cells: 24
run:
  start: 0
  seed: 2
  max_ticks: 1000
`)

	cfg, err := m.LoadConfig("strip")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Board.Kind != board.KindRing || cfg.Board.Cells != 24 {
		t.Errorf("Unexpected board: %+v", cfg.Board)
	}
	if cfg.Run.MaxTicks != 1000 {
		t.Errorf("Expected max_ticks 1000, got %d", cfg.Run.MaxTicks)
	}
}

func TestLoadConfigDefaultNames(t *testing.T) {
	m, _ := newTestManager(t)

	for _, name := range []string{"", DefaultConfigName} {
		cfg, err := m.LoadConfig(name)
		if err != nil {
			t.Fatalf("LoadConfig(%q) failed: %v", name, err)
		}
		if cfg.Name != DefaultConfigName {
			t.Errorf("Expected the built-in default for %q, got %q", name, cfg.Name)
		}
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.LoadConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	m, dir := newTestManager(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad json", "bad.json", `{"name": broken`},
		{"missing name", "noname.json", `{"board": {"kind": "ring", "cells": 8}}`},
		{"malformed board", "board.json", `{"name": "x", "board": {"kind": "ring", "cells": 1}}`},
		{"disconnected board", "split.json", `{"name": "x", "board": {"kind": "custom", "cells": 4, "edges": [[0,1],[2,3]]}}`},
		{"start outside board", "start.json", `{"name": "x", "board": {"kind": "ring", "cells": 8}, "run": {"start": 20}}`},
		{"negative budget", "budget.json", `{"name": "x", "board": {"kind": "ring", "cells": 8}, "run": {"max_ticks": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, dir, tt.file, tt.content)
			name := tt.file[:len(tt.file)-len(filepath.Ext(tt.file))]
			if _, err := m.LoadConfig(name); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestListConfigs(t *testing.T) {
	m, dir := newTestManager(t)
	writeConfig(t, dir, "b.json", `{"name": "B", "board": {"kind": "ring", "cells": 6}}`)
	writeConfig(t, dir, "a.yaml", "name: A\nboard:\n  kind: ring\n  cells: 4\n")
	writeConfig(t, dir, "broken.json", `{`)
	writeConfig(t, dir, "readme.txt", "not a config")

	infos, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}

	// Default first, then valid files sorted by name; broken and
	// unrelated files skipped.
	if len(infos) != 3 {
		t.Fatalf("Expected 3 configs, got %d: %+v", len(infos), infos)
	}
	if infos[0].ID != DefaultConfigName {
		t.Errorf("Expected the default first, got %q", infos[0].ID)
	}
	if infos[1].ID != "a" || infos[2].ID != "b" {
		t.Errorf("Expected a then b, got %q %q", infos[1].ID, infos[2].ID)
	}
	if infos[1].CellCount != 4 || infos[1].Kind != board.KindRing {
		t.Errorf("Unexpected info: %+v", infos[1])
	}
}

func TestSaveConfig(t *testing.T) {
	m, dir := newTestManager(t)

	cfg := &RunConfig{
		Name: "Saved",
		Board: board.Config{
			Kind:  board.KindRing,
			Cells: 16,
		},
		Run: sim.Options{Seed: 5},
	}

	if err := m.SaveConfig("saved", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json to exist: %v", err)
	}

	loaded, err := m.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Name != "Saved" || loaded.Board.Cells != 16 || loaded.Run.Seed != 5 {
		t.Errorf("Round-trip mismatch: %+v", loaded)
	}
}

func TestSaveConfigReservedName(t *testing.T) {
	m, _ := newTestManager(t)
	cfg := m.GetDefault()

	for _, name := range []string{"", DefaultConfigName} {
		if err := m.SaveConfig(name, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for reserved name %q, got %v", name, err)
		}
	}
}

func TestSaveConfigInvalid(t *testing.T) {
	m, _ := newTestManager(t)

	cfg := &RunConfig{
		Name:  "Broken",
		Board: board.Config{Kind: board.KindRing, Cells: 1},
	}
	if err := m.SaveConfig("broken", cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
