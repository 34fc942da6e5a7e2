package ops

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/taskgate/internal/model"
)

// dateLayouts are tried in order for each line of the dates file.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"02-Jan-2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
}

// CountWeekday counts the dates in dates.txt that fall on one weekday.
type CountWeekday struct {
	in      string
	out     string
	weekday time.Weekday
}

// NewCountWeekday creates the operation for root.
func NewCountWeekday(root string, weekday time.Weekday) *CountWeekday {
	return &CountWeekday{
		in:      filepath.Join(root, DatesFile),
		out:     filepath.Join(root, WeekdayOutputFile(weekday)),
		weekday: weekday,
	}
}

// WeekdayOutputFile names the output file, e.g. dates-wednesdays.txt.
func WeekdayOutputFile(d time.Weekday) string {
	return "dates-" + strings.ToLower(d.String()) + "s.txt"
}

func (o *CountWeekday) ID() model.OperationID { return model.CountWeekday }

func (o *CountWeekday) Targets() []string { return []string{o.in, o.out} }

func (o *CountWeekday) Run(_ context.Context) (string, error) {
	data, err := os.ReadFile(o.in)
	if err != nil {
		return "", fmt.Errorf("read dates: %w", err)
	}

	n, err := countWeekday(data, o.weekday)
	if err != nil {
		return "", err
	}

	if err := writeOutput(o.out, []byte(strconv.Itoa(n))); err != nil {
		return "", err
	}
	return fmt.Sprintf("Counted %d %ss in %s", n, o.weekday, DatesFile), nil
}

func countWeekday(data []byte, weekday time.Weekday) (int, error) {
	count := 0
	lineNo := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d, err := parseDate(line)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if d.Weekday() == weekday {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan dates: %w", err)
	}
	return count, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
