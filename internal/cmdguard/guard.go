// Package cmdguard runs the external processes some operations depend on
// (tool installer, setup script, formatter). Every command line is checked
// against the destructive vocabulary before it starts, and stderr carried in
// errors is scrubbed of credentials.
package cmdguard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/taskgate/internal/denylist"
)

// stderrTail bounds how much stderr is kept in an ExitError.
const stderrTail = 2048

// Config holds command guard configuration.
type Config struct {
	// Timeout bounds each command. Zero means no limit.
	Timeout  time.Duration
	Denylist *denylist.Denylist
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// Result captures subprocess execution outcome.
type Result struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// BlockedError is returned when a command line matches destructive vocabulary.
type BlockedError struct {
	Command string
	Pattern string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("command blocked: %q matches %q", e.Command, e.Pattern)
}

// ExitError is returned when a command exits nonzero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Guard checks and executes subprocess commands. Command lines are matched
// case-insensitively regardless of the instruction case policy.
type Guard struct {
	cfg Config

	mu sync.RWMutex
	dl *denylist.Denylist
}

// NewGuard creates a Guard. A nil denylist uses the defaults.
func NewGuard(cfg Config) *Guard {
	if cfg.Denylist == nil {
		cfg.Denylist = denylist.NewDefault()
	}
	return &Guard{cfg: cfg, dl: cfg.Denylist}
}

// SetDenylist replaces the vocabulary used by later checks. A nil denylist
// restores the defaults.
func (g *Guard) SetDenylist(dl *denylist.Denylist) {
	if dl == nil {
		dl = denylist.NewDefault()
	}
	g.mu.Lock()
	g.dl = dl
	g.mu.Unlock()
}

// Check reports whether the command line would be blocked. Dry-run mode.
func (g *Guard) Check(name string, args []string) error {
	line := commandLine(name, args)
	g.mu.RLock()
	dl := g.dl
	g.mu.RUnlock()
	if p, ok := dl.MatchDestructive(line, true); ok {
		return &BlockedError{Command: line, Pattern: p}
	}
	return nil
}

// Run executes name with args in dir. A nonzero exit returns *ExitError
// alongside the Result; a blocked command returns *BlockedError and never starts.
func (g *Guard) Run(ctx context.Context, dir, name string, args ...string) (*Result, error) {
	if err := g.Check(name, args); err != nil {
		return nil, err
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if g.cfg.Env != nil {
		cmd.Env = g.cfg.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("run %s: %w", name, ctxErr)
	}
	result.ExitCode = exitErr.ExitCode()
	redacted, _ := ScanOutputFull(strings.TrimSpace(result.Stderr))
	return result, &ExitError{
		Command:  commandLine(name, args),
		ExitCode: result.ExitCode,
		Stderr:   tail(redacted, stderrTail),
	}
}

// LookPath reports the resolved path of an executable on PATH.
func (g *Guard) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
