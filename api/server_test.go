package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	runs := session.NewManager()
	return NewServer(service.NewRunService(runs, configs), nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func createRun(t *testing.T, s *Server) *service.RunInfo {
	t.Helper()

	rec := doRequest(t, s, "POST", "/api/runs", map[string]interface{}{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info service.RunInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode run info: %v", err)
	}
	return &info
}

func TestCreateRun(t *testing.T) {
	s := newTestServer(t)

	info := createRun(t, s)
	if info.ID == "" {
		t.Error("Expected a run id")
	}
	if info.ConfigID != config.DefaultConfigName {
		t.Errorf("Expected default config, got %q", info.ConfigID)
	}
}

func TestCreateRunWithOptions(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/runs", map[string]interface{}{
		"options": map[string]interface{}{"start": 5, "seed": 9},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info service.RunInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode run info: %v", err)
	}
	if info.Options.Start != 5 || info.Options.Seed != 9 {
		t.Errorf("Expected option override, got %+v", info.Options)
	}
}

func TestCreateRunUnknownConfig(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, "POST", "/api/runs", map[string]interface{}{
		"config_id": "missing",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetRun(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "GET", "/api/runs/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/api/runs/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown run, got %d", rec.Code)
	}
}

func TestListRuns(t *testing.T) {
	s := newTestServer(t)
	createRun(t, s)
	createRun(t, s)

	rec := doRequest(t, s, "GET", "/api/runs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Runs []*service.RunInfo `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(resp.Runs) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(resp.Runs))
	}
}

func TestDeleteRun(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "DELETE", "/api/runs/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, "GET", "/api/runs/"+info.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestAdvance(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "POST", fmt.Sprintf("/api/runs/%s/advance", info.ID),
		map[string]interface{}{"ticks": 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.AdvanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if len(result.Frames) != 4 {
		t.Errorf("Expected 4 frames, got %d", len(result.Frames))
	}
	if len(result.Frames) > 0 && len(result.Frames[0].Lit) != 64 {
		t.Errorf("Expected 64 lit entries per frame, got %d", len(result.Frames[0].Lit))
	}
}

func TestAdvanceDefaultsToOneTick(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "POST", fmt.Sprintf("/api/runs/%s/advance", info.ID),
		map[string]interface{}{})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.AdvanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if len(result.Frames) != 1 {
		t.Errorf("Expected 1 frame, got %d", len(result.Frames))
	}
}

func TestAdvanceInvalidTicks(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "POST", fmt.Sprintf("/api/runs/%s/advance", info.ID),
		map[string]interface{}{"ticks": -3})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunAllAndReset(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "POST", fmt.Sprintf("/api/runs/%s/frames", info.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.AdvanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if !result.Result.Done {
		t.Error("Expected the run to be done")
	}

	rec = doRequest(t, s, "POST", fmt.Sprintf("/api/runs/%s/reset", info.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 on reset, got %d", rec.Code)
	}

	var reset service.RunInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &reset); err != nil {
		t.Fatalf("Failed to decode reset info: %v", err)
	}
	if reset.Result.Done {
		t.Error("Expected a fresh run after reset")
	}
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	info := createRun(t, s)

	rec := doRequest(t, s, "GET", fmt.Sprintf("/api/runs/%s/state", info.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var state struct {
		Body []int `json:"body"`
		Tick int   `json:"tick"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to decode state: %v", err)
	}
	if len(state.Body) != 1 {
		t.Errorf("Expected a length-1 snake, got %v", state.Body)
	}
}

func TestConfigEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, "GET", "/api/configs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var list struct {
		Configs []*config.Info `json:"configs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode configs: %v", err)
	}
	if len(list.Configs) != 1 || list.Configs[0].ID != config.DefaultConfigName {
		t.Fatalf("Expected only the default config, got %+v", list.Configs)
	}

	rec = doRequest(t, s, "POST", "/api/configs", map[string]interface{}{
		"name": "strip",
		"config": map[string]interface{}{
			"name":  "Strip",
			"board": map[string]interface{}{"kind": "ring", "cells": 8},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, "GET", "/api/configs/strip", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var cfg config.RunConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("Failed to decode config: %v", err)
	}
	if cfg.Name != "Strip" || cfg.Board.Cells != 8 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestCreateConfigInvalid(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing name", map[string]interface{}{
			"config": map[string]interface{}{"name": "X", "board": map[string]interface{}{"kind": "ring", "cells": 8}},
		}, http.StatusBadRequest},
		{"missing config", map[string]interface{}{"name": "x"}, http.StatusBadRequest},
		{"malformed board", map[string]interface{}{
			"name":   "bad",
			"config": map[string]interface{}{"name": "Bad", "board": map[string]interface{}{"kind": "ring", "cells": 1}},
		}, http.StatusBadRequest},
		{"reserved name", map[string]interface{}{
			"name":   config.DefaultConfigName,
			"config": map[string]interface{}{"name": "X", "board": map[string]interface{}{"kind": "ring", "cells": 8}},
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, "POST", "/api/configs", tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, "GET", "/ws?run=x", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a hub, got %d", rec.Code)
	}
}
