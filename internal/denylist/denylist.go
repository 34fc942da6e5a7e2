package denylist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Patterns holds the raw pattern strings organized by category.
type Patterns struct {
	Traversal   []string `yaml:"traversal"`
	Destructive []string `yaml:"destructive"`
}

// Denylist matches instruction text against forbidden vocabulary.
type Denylist struct {
	raw Patterns
}

// New creates a Denylist from raw patterns. The built-in patterns are always
// included; p can only add to them. Empty and repeated patterns are dropped.
func New(p Patterns) *Denylist {
	return &Denylist{raw: Patterns{
		Traversal:   merge(DefaultPatterns.Traversal, p.Traversal),
		Destructive: merge(DefaultPatterns.Destructive, p.Destructive),
	}}
}

// NewDefault creates a Denylist with the built-in patterns.
func NewDefault() *Denylist {
	return New(DefaultPatterns)
}

// Load reads a denylist from a YAML file. Empty path or a missing file
// yields the defaults. Patterns in the file extend the defaults.
func Load(path string) (*Denylist, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("read denylist: %w", err)
	}

	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse denylist: %w", err)
	}
	return New(p), nil
}

// MatchTraversal returns the first traversal pattern contained in text.
func (d *Denylist) MatchTraversal(text string, foldCase bool) (string, bool) {
	return firstMatch(text, d.raw.Traversal, foldCase)
}

// MatchDestructive returns the first destructive pattern contained in text.
func (d *Denylist) MatchDestructive(text string, foldCase bool) (string, bool) {
	return firstMatch(text, d.raw.Destructive, foldCase)
}

func firstMatch(text string, patterns []string, foldCase bool) (string, bool) {
	if foldCase {
		text = strings.ToLower(text)
	}
	for _, p := range patterns {
		needle := p
		if foldCase {
			needle = strings.ToLower(p)
		}
		if strings.Contains(text, needle) {
			return p, true
		}
	}
	return "", false
}

func merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
