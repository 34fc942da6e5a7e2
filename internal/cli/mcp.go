package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	taskmcp "github.com/ppiankov/taskgate/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs taskgate as an MCP (Model Context Protocol) server over stdio.\nExposes tools: taskgate_run, taskgate_read, taskgate_classify.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv := taskmcp.New(a.d, a.reader, version, a.log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "taskgate MCP server running on stdio")
	fmt.Fprintf(os.Stderr, "Data root: %s\n", a.cfg.Root())
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
