package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/taskgate/internal/dispatch"
)

// Planner produces dry-run plans. *dispatch.Dispatcher satisfies it.
type Planner interface {
	Plan(instruction string) dispatch.Plan
}

// Run plans every case. Nothing is executed.
func Run(s *Scenario, p Planner) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		plan := p.Plan(c.Instruction)
		actual := plan.Expect()
		expected := strings.ToLower(strings.TrimSpace(c.Expect))

		cr := CaseResult{
			Index:       i + 1,
			Instruction: c.Instruction,
			Expected:    expected,
			Actual:      actual,
			Rule:        plan.Rule,
			Detail:      plan.Decision.Detail,
		}

		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result
}

// Load parses a scenario YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return &s, nil
}

// LoadAndRun loads a scenario YAML file and runs it against p.
func LoadAndRun(path string, p Planner) (*RunResult, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	result := Run(s, p)
	result.File = path
	return result, nil
}

// Expand resolves glob patterns to a sorted, de-duplicated file list.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pat, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files match %s", strings.Join(patterns, ", "))
	}
	return files, nil
}
