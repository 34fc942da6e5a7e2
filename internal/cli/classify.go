package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/dispatch"
)

var classifyFormat string

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "text", "Output format (text|json)")
}

var classifyCmd = &cobra.Command{
	Use:   "classify <instruction>",
	Short: "Show which operation an instruction maps to (dry-run)",
	Long:  "Classifies the instruction and evaluates the sandbox without running\nanything.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	p := a.d.Plan(strings.Join(args, " "))
	w := cmd.OutOrStdout()

	if classifyFormat == "json" {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	fmt.Fprint(w, formatPlan(p))
	return nil
}

func formatPlan(p dispatch.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "operation: %s\n", p.Operation)
	if p.Rule != "" {
		fmt.Fprintf(&b, "rule:      %s\n", p.Rule)
	}
	if p.Decision.Allowed {
		b.WriteString("sandbox:   allow\n")
	} else {
		fmt.Fprintf(&b, "sandbox:   deny (%s)\n", p.Decision.Reason)
		if p.Decision.Detail != "" {
			fmt.Fprintf(&b, "detail:    %s\n", p.Decision.Detail)
		}
	}
	return b.String()
}
