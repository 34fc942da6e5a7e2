package ops

import (
	"context"
	"fmt"

	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/model"
)

// Registry maps operation ids to operations.
type Registry struct {
	ops   map[model.OperationID]Operation
	order []model.OperationID
}

// NewRegistry builds a registry from ops. Duplicate or unknown ids are errors.
func NewRegistry(ops ...Operation) (*Registry, error) {
	r := &Registry{ops: make(map[model.OperationID]Operation, len(ops))}
	for _, op := range ops {
		id := op.ID()
		if !id.IsKnown() {
			return nil, fmt.Errorf("register %q: %w", id, ErrUnknownOperation)
		}
		if _, dup := r.ops[id]; dup {
			return nil, fmt.Errorf("register %q: duplicate operation", id)
		}
		r.ops[id] = op
		r.order = append(r.order, id)
	}
	return r, nil
}

// Builtin returns a registry holding every operation, configured from cfg.
func Builtin(cfg *config.Config, runner Runner) (*Registry, error) {
	weekday, err := cfg.Weekday()
	if err != nil {
		return nil, err
	}
	root := cfg.Root()
	o := cfg.Operations
	return NewRegistry(
		NewInstallAndRunSetup(root, o.Setup.Tool, o.Setup.Install, o.Setup.Script, cfg.Identity, runner),
		NewFormatMarkdown(root, o.Formatter, runner),
		NewCountWeekday(root, weekday),
		NewSortContacts(root),
		NewExtractRecentLogs(root, o.RecentLogs),
		NewExtractHeadings(root),
		NewExtractEmailSender(root),
		NewCalculateFilteredSum(root, o.SumCategory),
	)
}

// Lookup returns the operation registered for id.
func (r *Registry) Lookup(id model.OperationID) (Operation, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id model.OperationID) bool {
	_, ok := r.ops[id]
	return ok
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []model.OperationID {
	out := make([]model.OperationID, len(r.order))
	copy(out, r.order)
	return out
}

// Invoke runs op. Any error or panic comes back as *Error.
func (r *Registry) Invoke(ctx context.Context, op Operation) (msg string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			msg = ""
			err = &Error{Op: op.ID(), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	msg, err = op.Run(ctx)
	if err != nil {
		return "", &Error{Op: op.ID(), Err: err}
	}
	return msg, nil
}
