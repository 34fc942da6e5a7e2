// Package ops holds the closed set of file operations and the registry
// that looks them up and invokes them.
//
// Every operation reads and writes fixed paths under the data root and
// takes no parameters. Rerunning an operation on unchanged input rewrites
// its output with identical bytes.
package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/taskgate/internal/cmdguard"
	"github.com/ppiankov/taskgate/internal/model"
)

// ErrUnknownOperation is returned when a registry has no entry for an id.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is one parameterless file transformation.
type Operation interface {
	ID() model.OperationID
	// Targets lists the absolute paths the operation reads or writes.
	Targets() []string
	// Run performs the transformation and returns a status message.
	Run(ctx context.Context) (string, error)
}

// Runner executes external processes.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (*cmdguard.Result, error)
	LookPath(name string) (string, error)
}

// Error wraps any failure raised while an operation runs.
type Error struct {
	Op  model.OperationID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// writeOutput replaces path with data, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
