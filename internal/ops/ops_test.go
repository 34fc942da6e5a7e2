package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/taskgate/internal/cmdguard"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestCountWeekday(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DatesFile, "2024-01-01\n2024-01-03\n2024-01-10\n")

	op := NewCountWeekday(root, time.Wednesday)
	msg, err := op.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := readFile(t, root, "dates-wednesdays.txt"); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
	if !strings.Contains(msg, "2 Wednesdays") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCountWeekdayMixedFormats(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DatesFile, "2024/01/03\nJan 10, 2024\n\n17-Jan-2024\n2024-01-18 10:00:00\n")

	if _, err := NewCountWeekday(root, time.Wednesday).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := readFile(t, root, "dates-wednesdays.txt"); got != "3" {
		t.Errorf("expected 3, got %q", got)
	}
}

func TestCountWeekdayBadDate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DatesFile, "2024-01-03\nnot a date\n")

	_, err := NewCountWeekday(root, time.Wednesday).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestCountWeekdayIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, DatesFile, "2024-01-03\n2024-01-10\n")
	op := NewCountWeekday(root, time.Wednesday)

	if _, err := op.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := readFile(t, root, "dates-wednesdays.txt")
	if _, err := op.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if second := readFile(t, root, "dates-wednesdays.txt"); second != first {
		t.Errorf("output changed between runs: %q vs %q", first, second)
	}
}

func TestWeekdayOutputFile(t *testing.T) {
	if got := WeekdayOutputFile(time.Friday); got != "dates-fridays.txt" {
		t.Errorf("got %s", got)
	}
}

func TestSortContacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ContactsFile, `[
  {"first_name": "Bob", "last_name": "Smith", "email": "bob@example.com"},
  {"first_name": "Zoe", "last_name": "Adams"},
  {"first_name": "Ann", "last_name": "Smith"}
]`)

	if _, err := NewSortContacts(root).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []map[string]string
	if err := json.Unmarshal([]byte(readFile(t, root, ContactsSorted)), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := [][2]string{{"Adams", "Zoe"}, {"Smith", "Ann"}, {"Smith", "Bob"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d contacts, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i]["last_name"] != w[0] || got[i]["first_name"] != w[1] {
			t.Errorf("position %d: got %s %s, want %s %s", i, got[i]["first_name"], got[i]["last_name"], w[1], w[0])
		}
	}
	if got[2]["email"] != "bob@example.com" {
		t.Error("extra fields must be preserved")
	}
}

func TestSortContactsStable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ContactsFile, `[
  {"first_name": "Ann", "last_name": "Lee", "id": "1"},
  {"first_name": "Ann", "last_name": "Lee", "id": "2"}
]`)
	if _, err := NewSortContacts(root).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := readFile(t, root, ContactsSorted)
	if strings.Index(out, `"1"`) > strings.Index(out, `"2"`) {
		t.Error("equal keys must keep input order")
	}
}

func TestSortContactsInvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ContactsFile, `{"not": "an array"}`)
	if _, err := NewSortContacts(root).Run(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExtractRecentLogs(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.log", "b.log", "c.log"} {
		p := writeFile(t, root, filepath.Join(LogsDir, name), "first "+name+"\nsecond\n")
		mt := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, root, filepath.Join(LogsDir, "notes.txt"), "ignored\n")

	if _, err := NewExtractRecentLogs(root, 2).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "first c.log\nfirst b.log\n"
	if got := readFile(t, root, LogsRecentFile); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractRecentLogsMissingDir(t *testing.T) {
	if _, err := NewExtractRecentLogs(t.TempDir(), 10).Run(context.Background()); err == nil {
		t.Fatal("expected error for missing logs directory")
	}
}

func TestExtractHeadings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/file1.md", "# Title One\nBody\n# Later\n")
	writeFile(t, root, "docs/sub/file2.md", "intro\n## Not this\n#   Spaced Title  \n")
	writeFile(t, root, "docs/none.md", "## only h2\n#hashtag\n")
	writeFile(t, root, "docs/readme.txt", "# ignored\n")

	if _, err := NewExtractHeadings(root).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(readFile(t, root, DocsIndexFile)), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"file1.md":     "Title One",
		"sub/file2.md": "Spaced Title",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
}

func TestExtractHeadingsSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/file1.md", "# Title One\n")
	if _, err := NewExtractHeadings(root).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"file1.md\": \"Title One\"\n}\n"
	if got := readFile(t, root, DocsIndexFile); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractEmailSender(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"display name", "Subject: hi\nFrom: Jane Doe <jane.doe@example.com>\nTo: x@y.org\n", "jane.doe@example.com"},
		{"bare address", "From: ops+alerts@mail.example.org\n\nbody", "ops+alerts@mail.example.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, EmailFile, tt.email)
			if _, err := NewExtractEmailSender(root).Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := readFile(t, root, EmailSenderFile); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractEmailSenderNoHeader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, EmailFile, "To: someone@example.com\n\nno sender here")
	_, err := NewExtractEmailSender(root).Run(context.Background())
	if !errors.Is(err, ErrNoSender) {
		t.Fatalf("expected ErrNoSender, got %v", err)
	}
}

func createTickets(t *testing.T, root string, rows [][3]any) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(root, TicketsDB))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Exec("CREATE TABLE tickets (type TEXT, units INTEGER, price REAL)"); err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if _, err := db.Exec("INSERT INTO tickets (type, units, price) VALUES (?, ?, ?)", r[0], r[1], r[2]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCalculateFilteredSum(t *testing.T) {
	root := t.TempDir()
	createTickets(t, root, [][3]any{
		{"Gold", 2, 50.5},
		{"Gold", 1, 100.0},
		{"Silver", 10, 10.0},
		{"gold", 1, 1000.0},
	})

	msg, err := NewCalculateFilteredSum(root, "Gold").Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := readFile(t, root, "ticket-sales-gold.txt"); got != "201" {
		t.Errorf("expected 201, got %q", got)
	}
	if !strings.Contains(msg, "Gold") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCalculateFilteredSumNoRows(t *testing.T) {
	root := t.TempDir()
	createTickets(t, root, [][3]any{{"Silver", 1, 5.0}})
	if _, err := NewCalculateFilteredSum(root, "Gold").Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, root, "ticket-sales-gold.txt"); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
}

func TestCalculateFilteredSumMissingDB(t *testing.T) {
	root := t.TempDir()
	if _, err := NewCalculateFilteredSum(root, "Gold").Run(context.Background()); err == nil {
		t.Fatal("expected error for missing database")
	}
	if _, err := os.Stat(filepath.Join(root, TicketsDB)); !os.IsNotExist(err) {
		t.Error("a missing database must not be created")
	}
}

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	installed bool
	calls     []call
	fail      map[string]error
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) (*cmdguard.Result, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	if name == "pip" {
		f.installed = true
	}
	return &cmdguard.Result{}, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.installed {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func TestInstallAndRunSetupInstallsMissingTool(t *testing.T) {
	root := t.TempDir()
	r := &fakeRunner{}
	op := NewInstallAndRunSetup(root, "uv", []string{"pip", "install", "uv"}, "https://example.com/datagen.py",
		func() string { return "user@example.com" }, r)

	if _, err := op.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.calls) != 2 {
		t.Fatalf("expected install and run, got %d calls", len(r.calls))
	}
	if r.calls[0].name != "pip" {
		t.Errorf("expected pip first, got %s", r.calls[0].name)
	}
	run := r.calls[1]
	wantArgs := []string{"run", "https://example.com/datagen.py", "user@example.com", "--root", root}
	if run.name != "uv" || strings.Join(run.args, " ") != strings.Join(wantArgs, " ") {
		t.Errorf("unexpected run call %s %v", run.name, run.args)
	}
	if run.dir != root {
		t.Errorf("expected dir %s, got %s", root, run.dir)
	}
}

func TestInstallAndRunSetupSkipsInstall(t *testing.T) {
	r := &fakeRunner{installed: true}
	op := NewInstallAndRunSetup(t.TempDir(), "uv", []string{"pip", "install", "uv"}, "s.py",
		func() string { return "a@b.co" }, r)
	if _, err := op.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(r.calls) != 1 || r.calls[0].name != "uv" {
		t.Errorf("expected only the uv run, got %+v", r.calls)
	}
}

func TestInstallAndRunSetupFailure(t *testing.T) {
	r := &fakeRunner{installed: true, fail: map[string]error{"uv": errors.New("exit 1")}}
	op := NewInstallAndRunSetup(t.TempDir(), "uv", nil, "s.py", func() string { return "a@b.co" }, r)
	if _, err := op.Run(context.Background()); err == nil {
		t.Fatal("expected failure")
	}

	missing := NewInstallAndRunSetup(t.TempDir(), "uv", nil, "s.py", func() string { return "a@b.co" }, &fakeRunner{})
	if _, err := missing.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "no install command") {
		t.Fatalf("expected missing install error, got %v", err)
	}
}

func TestFormatMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FormatFile, "#  Title\n")
	r := &fakeRunner{installed: true}

	op := NewFormatMarkdown(root, []string{"npx", "prettier@3.4.2", "--write"}, r)
	if _, err := op.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(r.calls))
	}
	c := r.calls[0]
	want := []string{"prettier@3.4.2", "--write", filepath.Join(root, FormatFile)}
	if c.name != "npx" || strings.Join(c.args, " ") != strings.Join(want, " ") {
		t.Errorf("unexpected call %s %v", c.name, c.args)
	}
}

func TestFormatMarkdownMissingFile(t *testing.T) {
	r := &fakeRunner{installed: true}
	op := NewFormatMarkdown(t.TempDir(), []string{"npx", "prettier@3.4.2", "--write"}, r)
	if _, err := op.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing format.md")
	}
	if len(r.calls) != 0 {
		t.Error("formatter must not run without an input file")
	}
}

func TestTargetsStayUnderRoot(t *testing.T) {
	root := t.TempDir()
	r := &fakeRunner{}
	ops := []Operation{
		NewInstallAndRunSetup(root, "uv", nil, "s.py", func() string { return "x" }, r),
		NewFormatMarkdown(root, []string{"fmt"}, r),
		NewCountWeekday(root, time.Wednesday),
		NewSortContacts(root),
		NewExtractRecentLogs(root, 10),
		NewExtractHeadings(root),
		NewExtractEmailSender(root),
		NewCalculateFilteredSum(root, "Gold"),
	}
	for _, op := range ops {
		for _, p := range op.Targets() {
			if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
				t.Errorf("%s: target %s outside root", op.ID(), p)
			}
		}
	}
}
