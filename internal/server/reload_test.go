package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/taskgate/internal/cmdguard"
	"github.com/ppiankov/taskgate/internal/model"
)

func TestConfigReloaderSwapsClassifier(t *testing.T) {
	root := t.TempDir()
	d := newDispatcher(t, root)
	if got := d.Plan("SORT CONTACTS").Operation; got != model.Unrecognized {
		t.Fatalf("expected case-sensitive default, got %s", got)
	}

	path := writeTempFile(t, t.TempDir(), "config.yaml", "data_root: "+root+"\nclassifier:\n  fold_case: true\n")
	if err := NewConfigReloader(path, d, nil).Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := d.Plan("SORT CONTACTS").Operation; got != model.SortContacts {
		t.Errorf("expected folded match after reload, got %s", got)
	}
}

func TestConfigReloaderKeepsRoot(t *testing.T) {
	root := t.TempDir()
	d := newDispatcher(t, root)
	path := writeTempFile(t, t.TempDir(), "config.yaml", "data_root: /somewhere/else\n")
	if err := NewConfigReloader(path, d, nil).Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if d.Guard().Root() != root {
		t.Errorf("data root changed on reload: %s", d.Guard().Root())
	}
}

func TestConfigReloaderRejectsInvalid(t *testing.T) {
	root := t.TempDir()
	d := newDispatcher(t, root)
	before := d.Guard()

	path := writeTempFile(t, t.TempDir(), "config.yaml", "classifier:\n  rules:\n    - operation: make_coffee\n      all_of: [coffee]\n")
	if err := NewConfigReloader(path, d, nil).Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if d.Guard() != before {
		t.Error("failed reload must keep the previous guard")
	}
}

func TestReloaderDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "config.yaml", "data_root: /data\n")

	var calls atomic.Int32
	r, err := NewReloader(func() error {
		calls.Add(1)
		return nil
	}, []string{path, "", dir + "/missing.yaml"}, nil)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}
	if len(r.Paths()) != 1 {
		t.Fatalf("expected one watched path, got %v", r.Paths())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		writeTempFile(t, dir, "config.yaml", "data_root: /data\n")
		time.Sleep(20 * time.Millisecond)
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Errorf("expected one debounced reload, got %d", calls.Load())
	}
}

func TestConfigReloaderUpdatesRunnerVocabulary(t *testing.T) {
	root := t.TempDir()
	d := newDispatcher(t, root)
	runner := cmdguard.NewGuard(cmdguard.Config{})
	if err := runner.Check("purge", nil); err != nil {
		t.Fatalf("purge should pass before reload: %v", err)
	}

	dir := t.TempDir()
	dlPath := writeTempFile(t, dir, "denylist.yaml", "destructive: [purge]\n")
	path := writeTempFile(t, dir, "config.yaml", "data_root: "+root+"\nguard:\n  denylist: "+dlPath+"\n")
	if err := NewConfigReloader(path, d, nil).WithRunner(runner).Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	var blocked *cmdguard.BlockedError
	if err := runner.Check("purge", nil); !errors.As(err, &blocked) {
		t.Errorf("expected runner to block purge after reload, got %v", err)
	}
	if got := d.Plan("sort contacts then purge").Decision.Reason; got != model.DestructiveIntent {
		t.Errorf("expected guard to deny purge, got %q", got)
	}
}

func waitForCalls(calls *atomic.Int32, want int32, within time.Duration) {
	deadline := time.Now().Add(within)
	for calls.Load() < want && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}

func TestReloaderSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "config.yaml", "data_root: /data\n")

	var calls atomic.Int32
	r, err := NewReloader(func() error {
		calls.Add(1)
		return nil
	}, []string{path}, nil)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	// Editors save by writing a sibling and renaming it over the original.
	for i := 0; i < 2; i++ {
		tmp := writeTempFile(t, dir, "config.yaml.swp", "data_root: /data\n")
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
		waitForCalls(&calls, int32(i+1), 3*time.Second)
		if got := calls.Load(); got != int32(i+1) {
			t.Fatalf("after replace %d: expected %d reloads, got %d", i+1, i+1, got)
		}
	}
}

func TestReloaderIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "config.yaml", "data_root: /data\n")

	var calls atomic.Int32
	r, err := NewReloader(func() error {
		calls.Add(1)
		return nil
	}, []string{path}, nil)
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(debounce + 300*time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("unrelated file triggered %d reloads", calls.Load())
	}
}
