package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/client"
	"github.com/ppiankov/taskgate/internal/model"
)

// Exit codes for run.
const (
	exitFailed   = 1
	exitRejected = 2
)

var (
	runRemote string
	runFormat string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runRemote, "remote", "", "gRPC address of a taskgate server (runs locally when empty)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "Output format (text|json)")
}

var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Run one plain-English task",
	Long: "Classifies the instruction, checks it against the sandbox, and runs\n" +
		"the matching operation.\n\n" +
		"Exit code 0 on success or an unrecognized task, 1 if the operation\n" +
		"failed, 2 if the sandbox rejected the instruction.",
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	instruction := strings.Join(args, " ")

	out, err := dispatchOnce(cmd.Context(), instruction)
	if err != nil {
		return err
	}
	if err := printOutcome(cmd.OutOrStdout(), out, runFormat); err != nil {
		return err
	}

	switch out.Kind {
	case model.KindSecurityRejected:
		os.Exit(exitRejected)
	case model.KindOperationFailed:
		os.Exit(exitFailed)
	}
	return nil
}

func dispatchOnce(ctx context.Context, instruction string) (model.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if runRemote != "" {
		c, err := client.New(runRemote)
		if err != nil {
			return model.Outcome{}, err
		}
		defer func() { _ = c.Close() }()
		return c.Run(ctx, instruction)
	}

	a, err := newApp()
	if err != nil {
		return model.Outcome{}, err
	}
	defer func() { _ = a.Close() }()
	return a.d.Run(ctx, instruction), nil
}

func printOutcome(w io.Writer, out model.Outcome, format string) error {
	if format == "json" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, out.Message)
	return err
}
