package classify

import (
	"time"

	"github.com/ppiankov/taskgate/internal/model"
)

// DefaultRules returns the built-in rules for the default weekday,
// Wednesday.
func DefaultRules() []Rule {
	return DefaultRulesFor(time.Wednesday)
}

// DefaultRulesFor returns the built-in rules in priority order, with the
// count-weekday keyword naming weekday ("count Mondays"). Rules are not
// mutually exclusive, so order decides: an instruction mentioning both
// "format the x.md" and "count Wednesdays" formats.
func DefaultRulesFor(weekday time.Weekday) []Rule {
	return []Rule{
		{ID: "install-and-run-setup", Operation: model.InstallAndRunSetup, AllOf: []string{"install uv", "run"}},
		{ID: "format-markdown", Operation: model.FormatMarkdown, AllOf: []string{"format the", ".md"}},
		{ID: "count-weekday", Operation: model.CountWeekday, AllOf: []string{"count " + weekday.String() + "s"}},
		{ID: "sort-contacts", Operation: model.SortContacts, AllOf: []string{"sort", "contacts"}},
		{ID: "extract-recent-logs", Operation: model.ExtractRecentLogs, AllOf: []string{"recent", ".log"}},
		{ID: "extract-headings", Operation: model.ExtractHeadings, AllOf: []string{"heading", "Markdown"}},
		{ID: "extract-email-sender", Operation: model.ExtractEmailSender, AllOf: []string{"email", "sender"}},
		{ID: "calculate-filtered-sum", Operation: model.CalculateFilteredSum, AllOf: []string{"total sales", "Gold"}},
	}
}
