package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/scenario"
)

var (
	checkScenario string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	_ = checkCmd.MarkFlagRequired("scenario")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run classification assertions from scenario files",
	Long: "Loads scenario YAML files matching a glob pattern, classifies and\n" +
		"authorizes each instruction without running it, and reports pass/fail.\n\n" +
		"Exit code 0 if all cases pass, 1 if any fail.\n" +
		"Use in CI to gate rule and vocabulary changes.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := checkScenarios(checkScenario)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch checkFormat {
	case "json":
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	default:
		fmt.Fprint(w, scenario.FormatText(results))
	}

	for _, r := range results {
		if r.Failed > 0 {
			os.Exit(1)
		}
	}
	return nil
}

func checkScenarios(pattern string) ([]*scenario.RunResult, error) {
	files, err := scenario.Expand([]string{pattern})
	if err != nil {
		return nil, err
	}

	a, err := newApp()
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	var results []*scenario.RunResult
	for _, path := range files {
		r, err := scenario.LoadAndRun(path, a.d)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
