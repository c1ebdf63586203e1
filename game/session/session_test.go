package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

func testConfig() *config.RunConfig {
	return &config.RunConfig{
		Name: "Test Board",
		Board: board.Config{
			Kind:         board.KindRectangle,
			Width:        4,
			Height:       4,
			NeighborMode: board.NeighborMode4,
		},
		Run: sim.Options{Seed: 1},
	}
}

func TestManagerCreate(t *testing.T) {
	m := NewManager()

	run, err := m.Create("run-1", testConfig(), "test", sim.Options{Seed: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if run.ID != "run-1" || run.ConfigID != "test" {
		t.Errorf("Unexpected run identity: %+v", run)
	}
	if run.Sim == nil {
		t.Fatal("Expected a simulation on the run")
	}

	if _, err := m.Create("run-1", testConfig(), "test", sim.Options{}); !errors.Is(err, ErrRunAlreadyExists) {
		t.Errorf("Expected ErrRunAlreadyExists, got %v", err)
	}
}

func TestManagerCreateGeneratesID(t *testing.T) {
	m := NewManager()

	a, err := m.Create("", testConfig(), "test", sim.Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := m.Create("", testConfig(), "test", sim.Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
}

func TestManagerCreateBadBoard(t *testing.T) {
	m := NewManager()

	cfg := testConfig()
	cfg.Board = board.Config{Kind: board.KindRing, Cells: 1}
	if _, err := m.Create("bad", cfg, "bad", sim.Options{}); err == nil {
		t.Error("Expected error for malformed board")
	}
}

func TestManagerGetListDelete(t *testing.T) {
	m := NewManager()

	if _, err := m.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}

	if _, err := m.Create("run-1", testConfig(), "test", sim.Options{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create("run-2", testConfig(), "test", sim.Options{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	run, err := m.Get("run-1")
	if err != nil || run.ID != "run-1" {
		t.Errorf("Get failed: %v %+v", err, run)
	}

	if got := len(m.List()); got != 2 {
		t.Errorf("Expected 2 runs, got %d", got)
	}

	if err := m.Delete("run-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get("run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound after delete, got %v", err)
	}
	if err := m.Delete("run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound for double delete, got %v", err)
	}
}

func TestManagerUpdateLastAccessed(t *testing.T) {
	m := NewManager()

	run, err := m.Create("run-1", testConfig(), "test", sim.Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before := run.LastAccessedAt

	if err := m.UpdateLastAccessed("run-1"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if run.LastAccessedAt.Before(before) {
		t.Error("Expected the access timestamp to move forward")
	}

	if err := m.UpdateLastAccessed("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	m, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	run, err := m.Create("run-1", testConfig(), "test", sim.Options{Seed: 1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !fp.Exists("run-1") {
		t.Fatal("Expected descriptor file after create")
	}

	// Advance a few frames, persist, and restore into a fresh run.
	for i := 0; i < 5; i++ {
		if _, err := run.Sim.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}
	if err := m.Save("run-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored, err := fp.Load("run-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if restored.Sim.FramesEmitted() != run.Sim.FramesEmitted() {
		t.Fatalf("Expected replay to %d frames, got %d",
			run.Sim.FramesEmitted(), restored.Sim.FramesEmitted())
	}
	if restored.Sim.State().Tick != run.Sim.State().Tick {
		t.Errorf("Tick mismatch after restore: %d vs %d",
			run.Sim.State().Tick, restored.Sim.State().Tick)
	}

	// Determinism: both runs must now produce identical future frames.
	for i := 0; i < 3; i++ {
		a, errA := run.Sim.Next()
		b, errB := restored.Sim.Next()
		if (errA == nil) != (errB == nil) {
			t.Fatalf("Streams diverged at step %d: %v vs %v", i, errA, errB)
		}
		if errA != nil {
			break
		}
		if !a.Equal(b) {
			t.Fatalf("Frame %d differs between original and restored run", i)
		}
	}
}

func TestManagerRestoresAtStartup(t *testing.T) {
	dir := t.TempDir()
	fp, err := NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}

	m, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := m.Create("run-1", testConfig(), "test", sim.Options{Seed: 3}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A second manager over the same directory sees the run.
	m2, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("Failed to create second manager: %v", err)
	}
	run, err := m2.Get("run-1")
	if err != nil {
		t.Fatalf("Expected restored run, got %v", err)
	}
	if run.ConfigID != "test" {
		t.Errorf("Expected config id test, got %q", run.ConfigID)
	}
}

func TestLoadMissingRun(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	if _, err := fp.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
	if err := fp.Delete("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestDeleteRemovesDescriptor(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	m, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := m.Create("run-1", testConfig(), "test", sim.Options{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.Delete("run-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if fp.Exists("run-1") {
		t.Error("Expected descriptor file to be removed")
	}
}

func TestDeleteFromMemoryKeepsDescriptor(t *testing.T) {
	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	m, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := m.Create("run-1", testConfig(), "test", sim.Options{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := m.DeleteFromMemory("run-1"); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}
	if _, err := m.Get("run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Error("Expected the run to be gone from memory")
	}
	if !fp.Exists("run-1") {
		t.Error("Expected the descriptor file to survive")
	}
}

func TestCleanupExpired(t *testing.T) {
	m := NewManager()

	run, err := m.Create("old", testConfig(), "test", sim.Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := m.Create("fresh", testConfig(), "test", sim.Options{}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Age one run past the cutoff by hand.
	run.LastAccessedAt = time.Now().Add(-48 * time.Hour)

	removed := m.CleanupExpired(24 * time.Hour)
	if removed != 1 {
		t.Fatalf("Expected 1 run removed, got %d", removed)
	}
	if _, err := m.Get("old"); !errors.Is(err, ErrRunNotFound) {
		t.Error("Expected the stale run to be gone")
	}
	if _, err := m.Get("fresh"); err != nil {
		t.Errorf("Expected the fresh run to survive: %v", err)
	}
}

// fullStack wires the real service, manager and file persistence the
// way the server does, so lock interactions between the layers are
// covered.
func fullStack(t *testing.T) (service.RunService, *FilePersistence) {
	t.Helper()

	fp, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	m, err := NewManagerWithPersistence(fp)
	if err != nil {
		t.Fatalf("NewManagerWithPersistence failed: %v", err)
	}
	cm, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return service.NewRunService(m, cm), fp
}

// await fails the test instead of hanging if the call never returns.
func await(t *testing.T, name string, call func() error) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not return within 5s", name)
	}
}

func TestServiceAdvancePersists(t *testing.T) {
	svc, fp := fullStack(t)
	ctx := context.Background()

	info, err := svc.CreateRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	var advance *service.AdvanceResult
	await(t, "Advance", func() error {
		var err error
		advance, err = svc.Advance(ctx, info.ID, 3)
		return err
	})

	if len(advance.Frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(advance.Frames))
	}

	// The descriptor on disk reflects the advanced tick count.
	restored, err := fp.Load(info.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := restored.Sim.FramesEmitted(); got != 3 {
		t.Errorf("Expected 3 persisted frames emitted, got %d", got)
	}
}

func TestServiceRunAllPersists(t *testing.T) {
	svc, fp := fullStack(t)
	ctx := context.Background()

	info, err := svc.CreateRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	var result *service.AdvanceResult
	await(t, "RunAll", func() error {
		var err error
		result, err = svc.RunAll(ctx, info.ID)
		return err
	})

	if !result.Result.Done {
		t.Errorf("Expected a finished run, got %+v", result.Result)
	}

	restored, err := fp.Load(info.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := restored.Sim.FramesEmitted(); got != len(result.Frames) {
		t.Errorf("Expected %d persisted frames emitted, got %d", len(result.Frames), got)
	}
}

func TestServiceResetPersists(t *testing.T) {
	svc, fp := fullStack(t)
	ctx := context.Background()

	info, err := svc.CreateRun(ctx, "", nil)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	await(t, "Advance", func() error {
		_, err := svc.Advance(ctx, info.ID, 5)
		return err
	})
	await(t, "Reset", func() error {
		_, err := svc.Reset(ctx, info.ID)
		return err
	})

	restored, err := fp.Load(info.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := restored.Sim.FramesEmitted(); got != 0 {
		t.Errorf("Expected 0 persisted frames emitted after reset, got %d", got)
	}
}
