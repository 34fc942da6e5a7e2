// Package dispatch turns an instruction into exactly one Outcome.
//
// A request moves through classify, authorize, lookup, and invoke. Each
// stage can end the request; nothing runs once the sandbox has said no.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/taskgate/internal/classify"
	"github.com/ppiankov/taskgate/internal/model"
	"github.com/ppiankov/taskgate/internal/ops"
	"github.com/ppiankov/taskgate/internal/sandbox"
)

// Registry is the part of ops.Registry the dispatcher needs.
type Registry interface {
	Has(id model.OperationID) bool
	Lookup(id model.OperationID) (ops.Operation, bool)
	Invoke(ctx context.Context, op ops.Operation) (string, error)
}

// Plan is the dry-run view of an instruction: what would run and whether
// the sandbox would allow it. No operation is invoked.
type Plan struct {
	Instruction string                `json:"instruction"`
	Operation   model.OperationID     `json:"operation,omitempty"`
	Rule        string                `json:"rule,omitempty"`
	Decision    model.SandboxDecision `json:"decision"`
}

// Expect returns the single token a scenario compares against: the
// operation id, "unrecognized", or the deny reason.
func (p Plan) Expect() string {
	if p.Operation == model.Unrecognized {
		return model.Unrecognized.String()
	}
	if !p.Decision.Allowed {
		return string(p.Decision.Reason)
	}
	return string(p.Operation)
}

// Dispatcher wires classifier, guard, and registry together.
type Dispatcher struct {
	mu         sync.RWMutex
	classifier *classify.Classifier
	guard      *sandbox.Guard

	registry Registry
	logger   *slog.Logger
}

// New creates a Dispatcher. Every classifier rule must target a registered
// operation. A nil logger discards logs.
func New(c *classify.Classifier, g *sandbox.Guard, reg Registry, logger *slog.Logger) (*Dispatcher, error) {
	if err := classify.Validate(c.Rules(), reg.Has); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		classifier: c,
		guard:      g,
		registry:   reg,
		logger:     logger,
	}, nil
}

// Swap replaces classifier and guard atomically. In-flight requests finish
// with the pair they started with.
func (d *Dispatcher) Swap(c *classify.Classifier, g *sandbox.Guard) error {
	if err := classify.Validate(c.Rules(), d.registry.Has); err != nil {
		return err
	}
	d.mu.Lock()
	d.classifier = c
	d.guard = g
	d.mu.Unlock()
	return nil
}

// Guard returns the current guard.
func (d *Dispatcher) Guard() *sandbox.Guard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.guard
}

func (d *Dispatcher) snapshot() (*classify.Classifier, *sandbox.Guard) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.classifier, d.guard
}

// Plan classifies and authorizes instruction without running anything.
func (d *Dispatcher) Plan(instruction string) Plan {
	c, g := d.snapshot()
	p := Plan{Instruction: instruction, Decision: model.Allow()}

	rule, ok := c.Explain(instruction)
	if !ok {
		return p
	}
	p.Operation = rule.Operation
	p.Rule = rule.ID

	p.Decision = g.Authorize(instruction)
	if !p.Decision.Allowed {
		return p
	}
	if op, ok := d.registry.Lookup(rule.Operation); ok {
		p.Decision = g.AuthorizeTargets(op.Targets())
	}
	return p
}

// Run dispatches instruction and returns its Outcome. It never panics and
// never returns an error; failures are Outcomes.
func (d *Dispatcher) Run(ctx context.Context, instruction string) model.Outcome {
	start := time.Now()
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRequestID(ctx, id)
	}

	out := d.run(ctx, instruction)

	attrs := []any{
		slog.String("request_id", id),
		slog.String("outcome", string(out.Kind)),
		slog.String("operation", out.Operation.String()),
		slog.Duration("duration", time.Since(start)),
	}
	switch out.Kind {
	case model.KindSuccess:
		d.logger.InfoContext(ctx, "task completed", attrs...)
	case model.KindUnrecognized:
		d.logger.InfoContext(ctx, "task not recognized", append(attrs, slog.String("instruction", instruction))...)
	case model.KindSecurityRejected:
		d.logger.WarnContext(ctx, "task rejected", append(attrs, slog.String("reason", string(out.Reason)))...)
	default:
		d.logger.ErrorContext(ctx, "task failed", append(attrs, slog.String("error", out.Message))...)
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, instruction string) model.Outcome {
	c, g := d.snapshot()

	id := c.Classify(instruction)
	if id == model.Unrecognized {
		return model.NotRecognized(instruction)
	}

	if dec := g.Authorize(instruction); !dec.Allowed {
		return model.Rejected(instruction, id, dec)
	}

	op, ok := d.registry.Lookup(id)
	if !ok {
		return model.Failed(instruction, id, fmt.Errorf("%s: %w", id, ops.ErrUnknownOperation))
	}

	if dec := g.AuthorizeTargets(op.Targets()); !dec.Allowed {
		return model.Rejected(instruction, id, dec)
	}

	msg, err := d.registry.Invoke(ctx, op)
	if err != nil {
		return model.Failed(instruction, id, err)
	}
	return model.Succeeded(instruction, id, msg)
}
