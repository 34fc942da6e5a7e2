// Package sandbox confines task execution to a single data root.
//
// The guard works on instruction text: it rejects traversal tokens, absolute
// or home-relative paths that leave the root, and destructive vocabulary.
// It is a string-level check, not a capability system. Operations hardcode
// their own paths, so the dispatcher also passes each operation's declared
// targets through AuthorizeTargets.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/taskgate/internal/denylist"
	"github.com/ppiankov/taskgate/internal/model"
)

// tokenTrim is stripped from both ends of a word before it is treated as a path.
const tokenTrim = "\"'`()[]{}<>,;:!?"

// Guard authorizes instructions against the data root.
type Guard struct {
	root     string
	dl       *denylist.Denylist
	foldCase bool
}

// NewGuard creates a Guard for root. A nil denylist uses the defaults.
func NewGuard(root string, dl *denylist.Denylist, foldCase bool) *Guard {
	if dl == nil {
		dl = denylist.NewDefault()
	}
	return &Guard{
		root:     filepath.Clean(root),
		dl:       dl,
		foldCase: foldCase,
	}
}

// Denylist returns the vocabulary the guard checks.
func (g *Guard) Denylist() *denylist.Denylist {
	return g.dl
}

// Root returns the cleaned data root.
func (g *Guard) Root() string {
	return g.root
}

// Authorize checks instruction text. Checks run in a fixed order and the
// first failing check decides: traversal, path containment, destructive intent.
func (g *Guard) Authorize(instruction string) model.SandboxDecision {
	if p, ok := g.dl.MatchTraversal(instruction, g.foldCase); ok {
		return model.Deny(model.PathEscape, fmt.Sprintf("traversal token %q", p))
	}

	for _, p := range PathTokens(instruction) {
		resolved, err := expandHome(p)
		if err != nil || !g.Contains(resolved) {
			return model.Deny(model.PathEscape, fmt.Sprintf("path %q is outside %s", p, g.root))
		}
	}

	if p, ok := g.dl.MatchDestructive(instruction, g.foldCase); ok {
		return model.Deny(model.DestructiveIntent, fmt.Sprintf("matched %q", p))
	}

	return model.Allow()
}

// AuthorizeTargets denies when any declared operation path resolves outside
// the root. Relative paths are resolved against the root.
func (g *Guard) AuthorizeTargets(paths []string) model.SandboxDecision {
	for _, p := range paths {
		if _, ok := g.Resolve(p); !ok {
			return model.Deny(model.PathEscape, fmt.Sprintf("target %q is outside %s", p, g.root))
		}
	}
	return model.Allow()
}

// Resolve cleans p, joins it to the root when relative, and reports whether
// the result is the root or a descendant.
func (g *Guard) Resolve(p string) (string, bool) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(g.root, p)
	}
	p = filepath.Clean(p)
	return p, g.Contains(p)
}

// Contains reports whether an absolute path is the root or lies beneath it.
func (g *Guard) Contains(p string) bool {
	return Within(g.root, p)
}

// Within reports whether p is root or a child of root after cleaning.
func Within(root, p string) bool {
	root = filepath.Clean(root)
	p = filepath.Clean(p)
	if p == root {
		return true
	}
	// When root is "/", every absolute path is within it.
	if root == string(filepath.Separator) {
		return filepath.IsAbs(p)
	}
	return strings.HasPrefix(p, root+string(filepath.Separator))
}

// PathTokens returns the words of s that look like absolute or
// home-relative paths, with surrounding quotes and punctuation removed.
func PathTokens(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, tokenTrim)
		w = strings.TrimRight(w, ".")
		if strings.HasPrefix(w, "/") || strings.HasPrefix(w, "~") {
			out = append(out, w)
		}
	}
	return out
}

func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
