package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

// instructionWidth bounds how much of an instruction a report line shows.
const instructionWidth = 60

// FormatText renders results as an aligned report: one line per scenario,
// then one line per instruction whose dry run missed its expectation.
func FormatText(results []*RunResult) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	var total, matched, missed, scenariosMissed int
	for _, r := range results {
		total += r.Total
		matched += r.Passed
		missed += r.Failed

		status := "ok"
		if r.Failed > 0 {
			status = "mismatch"
			scenariosMissed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", status, r.Name, r.Passed, r.Total)

		for _, c := range r.Cases {
			if c.Passed {
				continue
			}
			fmt.Fprintf(tw, "  #%d\texpect %s\tgot %s\t%q\n", c.Index, c.Expected, actual(c), clip(c.Instruction))
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(&b, "\n%d/%d instructions matched their expectation", matched, total)
	if missed > 0 {
		fmt.Fprintf(&b, "; %d/%d scenarios have mismatches", scenariosMissed, len(results))
	}
	b.WriteString(".\n")
	return b.String()
}

// actual describes what the dry run produced, with the rule that fired.
func actual(c CaseResult) string {
	s := c.Actual
	if c.Rule != "" {
		s += " (rule " + c.Rule + ")"
	}
	return s
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= instructionWidth {
		return s
	}
	return string(r[:instructionWidth-3]) + "..."
}

// FormatJSON renders run results as JSON.
func FormatJSON(results []*RunResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}
