package ops

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/taskgate/internal/model"
)

// ExtractRecentLogs writes the first line of the most recently modified
// .log files, newest first.
type ExtractRecentLogs struct {
	dir   string
	out   string
	limit int
}

// NewExtractRecentLogs creates the operation for root.
func NewExtractRecentLogs(root string, limit int) *ExtractRecentLogs {
	return &ExtractRecentLogs{
		dir:   filepath.Join(root, LogsDir),
		out:   filepath.Join(root, LogsRecentFile),
		limit: limit,
	}
}

func (o *ExtractRecentLogs) ID() model.OperationID { return model.ExtractRecentLogs }

func (o *ExtractRecentLogs) Targets() []string { return []string{o.dir, o.out} }

type logFile struct {
	path    string
	name    string
	modTime time.Time
}

func (o *ExtractRecentLogs) Run(_ context.Context) (string, error) {
	files, err := recentLogs(o.dir, o.limit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range files {
		line, err := firstLine(f.path)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := writeOutput(o.out, []byte(b.String())); err != nil {
		return "", err
	}
	return fmt.Sprintf("First lines of %d recent log files written to %s", len(files), LogsRecentFile), nil
}

// recentLogs returns up to limit .log files in dir, newest first.
// Equal modification times fall back to name order.
func recentLogs(dir string, limit int) ([]logFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	var files []logFile
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, logFile{
			path:    filepath.Join(dir, e.Name()),
			name:    e.Name(),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].name < files[j].name
	})

	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return "", nil
}
