package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setup(t *testing.T) (root, outside string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "data")
	outside = filepath.Join(base, "secret.txt")
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "email-sender.txt"), []byte("a@b.co"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(outside, []byte("top secret"), 0644); err != nil {
		t.Fatal(err)
	}
	return root, outside
}

func TestReadInsideRoot(t *testing.T) {
	root, _ := setup(t)
	r := New(root, false)

	for _, p := range []string{filepath.Join(root, "email-sender.txt"), "email-sender.txt"} {
		got, err := r.Read(p)
		if err != nil {
			t.Fatalf("Read(%q): %v", p, err)
		}
		if got != "a@b.co" {
			t.Errorf("Read(%q) = %q", p, got)
		}
	}
}

func TestReadNotFound(t *testing.T) {
	root, _ := setup(t)
	r := New(root, false)

	tests := []string{"", "missing.txt", filepath.Join(root, "docs")}
	for _, p := range tests {
		if _, err := r.Read(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q): expected ErrNotFound, got %v", p, err)
		}
	}
}

func TestReadConfined(t *testing.T) {
	root, outside := setup(t)
	r := New(root, false)

	for _, p := range []string{outside, "../secret.txt"} {
		if _, err := r.Read(p); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Read(%q): expected ErrOutsideRoot, got %v", p, err)
		}
	}
}

func TestReadSymlinkEscape(t *testing.T) {
	root, outside := setup(t)
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := New(root, false).Read(link); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot through symlink, got %v", err)
	}
}

func TestReadUnrestricted(t *testing.T) {
	root, outside := setup(t)
	got, err := New(root, true).Read(outside)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "top secret" {
		t.Errorf("got %q", got)
	}
}

func TestReadOtherErrorsAreNotNotFound(t *testing.T) {
	root, _ := setup(t)

	// A regular file used as a directory fails with ENOTDIR, not ENOENT.
	p := filepath.Join("email-sender.txt", "child")
	for _, unrestricted := range []bool{false, true} {
		_, err := New(root, unrestricted).Read(p)
		if err == nil {
			t.Fatalf("unrestricted=%v: expected error", unrestricted)
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrOutsideRoot) {
			t.Errorf("unrestricted=%v: expected a plain read error, got %v", unrestricted, err)
		}
	}
}
