package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/model"
)

// Rule maps instruction text to an operation. It matches when the
// instruction contains every AllOf keyword.
type Rule struct {
	ID        string
	Operation model.OperationID
	AllOf     []string
}

// Match reports whether every keyword occurs in instruction.
// A rule without keywords never matches.
func (r Rule) Match(instruction string, foldCase bool) bool {
	if len(r.AllOf) == 0 {
		return false
	}
	if foldCase {
		instruction = strings.ToLower(instruction)
	}
	for _, kw := range r.AllOf {
		if foldCase {
			kw = strings.ToLower(kw)
		}
		if !strings.Contains(instruction, kw) {
			return false
		}
	}
	return true
}

// Classifier evaluates an ordered rule list. First match wins.
type Classifier struct {
	rules    []Rule
	foldCase bool
}

// New creates a Classifier over rules in the given priority order.
func New(rules []Rule, foldCase bool) *Classifier {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp, foldCase: foldCase}
}

// Default returns a case-sensitive Classifier over DefaultRules.
func Default() *Classifier {
	return New(DefaultRules(), false)
}

// FromConfig builds a Classifier from configuration. An empty rule list
// selects DefaultRulesFor(weekday).
func FromConfig(cfg config.ClassifierConfig, weekday time.Weekday) (*Classifier, error) {
	if len(cfg.Rules) == 0 {
		return New(DefaultRulesFor(weekday), cfg.FoldCase), nil
	}
	rules, err := FromSpecs(cfg.Rules)
	if err != nil {
		return nil, err
	}
	return New(rules, cfg.FoldCase), nil
}

// Classify returns the operation of the first matching rule, or
// model.Unrecognized. Every instruction maps to exactly one result.
func (c *Classifier) Classify(instruction string) model.OperationID {
	r, ok := c.Explain(instruction)
	if !ok {
		return model.Unrecognized
	}
	return r.Operation
}

// Explain returns the first matching rule.
func (c *Classifier) Explain(instruction string) (Rule, bool) {
	if instruction == "" {
		return Rule{}, false
	}
	for _, r := range c.rules {
		if r.Match(instruction, c.foldCase) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the rule list in priority order.
func (c *Classifier) Rules() []Rule {
	cp := make([]Rule, len(c.rules))
	copy(cp, c.rules)
	return cp
}

// FromSpecs converts YAML rule specs, rejecting unknown operations,
// missing keywords, and duplicate ids.
func FromSpecs(specs []config.RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	seen := make(map[string]bool)
	for i, s := range specs {
		op := model.OperationID(s.Operation)
		if !op.IsKnown() {
			return nil, fmt.Errorf("rule %d: unknown operation %q", i+1, s.Operation)
		}
		if len(s.AllOf) == 0 {
			return nil, fmt.Errorf("rule %d: all_of must list at least one keyword", i+1)
		}
		for _, kw := range s.AllOf {
			if kw == "" {
				return nil, fmt.Errorf("rule %d: empty keyword", i+1)
			}
		}
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("%s.%d", op, i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("rule %d: duplicate id %q", i+1, id)
		}
		seen[id] = true
		rules = append(rules, Rule{ID: id, Operation: op, AllOf: s.AllOf})
	}
	return rules, nil
}

// Validate checks that every rule targets an operation for which has
// returns true. Used at startup to keep classifier and registry in sync.
func Validate(rules []Rule, has func(model.OperationID) bool) error {
	for _, r := range rules {
		if !has(r.Operation) {
			return fmt.Errorf("rule %q targets unregistered operation %q", r.ID, r.Operation)
		}
	}
	return nil
}
