package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/client"
)

var readRemote string

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readRemote, "remote", "", "gRPC address of a taskgate server (reads locally when empty)")
}

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a file from the data root",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	var content string
	if readRemote != "" {
		c, err := client.New(readRemote)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		content, err = c.Read(ctx, args[0])
		if err != nil {
			return err
		}
	} else {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		content, err = a.reader.Read(args[0])
		if err != nil {
			return err
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
