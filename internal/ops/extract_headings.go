package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/taskgate/internal/model"
)

// ExtractHeadings indexes the first H1 of every Markdown file under docs/.
type ExtractHeadings struct {
	dir string
	out string
}

// NewExtractHeadings creates the operation for root.
func NewExtractHeadings(root string) *ExtractHeadings {
	return &ExtractHeadings{
		dir: filepath.Join(root, DocsDir),
		out: filepath.Join(root, DocsIndexFile),
	}
}

func (o *ExtractHeadings) ID() model.OperationID { return model.ExtractHeadings }

func (o *ExtractHeadings) Targets() []string { return []string{o.dir, o.out} }

func (o *ExtractHeadings) Run(_ context.Context) (string, error) {
	index, err := headingIndex(o.dir)
	if err != nil {
		return "", err
	}

	// encoding/json sorts map keys, so the index is stable across runs.
	buf, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode index: %w", err)
	}
	if err := writeOutput(o.out, append(buf, '\n')); err != nil {
		return "", err
	}
	return fmt.Sprintf("Indexed %d Markdown headings into %s", len(index), DocsIndexFile), nil
}

// headingIndex maps slash-separated paths relative to dir to their first
// H1 text. Files without one are left out.
func headingIndex(dir string) (map[string]string, error) {
	index := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".md" {
			return nil
		}
		title, ok, err := firstH1(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		index[filepath.ToSlash(rel)] = title
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs: %w", err)
	}
	return index, nil
}

// firstH1 returns the text of the first line marked with exactly one '#'.
func firstH1(path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if title, ok := h1Text(scanner.Text()); ok {
			return title, true, nil
		}
	}
	return "", false, scanner.Err()
}

func h1Text(line string) (string, bool) {
	line = strings.TrimLeft(line, " ")
	if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "##") {
		return "", false
	}
	rest := line[1:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
