package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/taskgate/internal/model"
)

// FormatMarkdown rewrites format.md in place with an external formatter.
type FormatMarkdown struct {
	root      string
	file      string
	formatter []string
	runner    Runner
}

// NewFormatMarkdown creates the operation. formatter is the command line
// that receives the file path as its final argument.
func NewFormatMarkdown(root string, formatter []string, runner Runner) *FormatMarkdown {
	return &FormatMarkdown{
		root:      root,
		file:      filepath.Join(root, FormatFile),
		formatter: formatter,
		runner:    runner,
	}
}

func (o *FormatMarkdown) ID() model.OperationID { return model.FormatMarkdown }

func (o *FormatMarkdown) Targets() []string { return []string{o.file} }

func (o *FormatMarkdown) Run(ctx context.Context) (string, error) {
	if len(o.formatter) == 0 {
		return "", fmt.Errorf("no formatter configured")
	}
	if _, err := os.Stat(o.file); err != nil {
		return "", fmt.Errorf("stat %s: %w", FormatFile, err)
	}

	args := append(append([]string{}, o.formatter[1:]...), o.file)
	if _, err := o.runner.Run(ctx, o.root, o.formatter[0], args...); err != nil {
		return "", fmt.Errorf("format %s: %w", FormatFile, err)
	}
	return fmt.Sprintf("Formatted %s", FormatFile), nil
}
