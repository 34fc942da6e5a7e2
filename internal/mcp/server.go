package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/taskgate/internal/dispatch"
	"github.com/ppiankov/taskgate/internal/model"
)

// Dispatcher runs and plans instructions.
type Dispatcher interface {
	Run(ctx context.Context, instruction string) model.Outcome
	Plan(instruction string) dispatch.Plan
}

// FileReader returns file contents.
type FileReader interface {
	Read(path string) (string, error)
}

// Server exposes the dispatcher as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	d         Dispatcher
	r         FileReader
	logger    *slog.Logger
}

// New creates an MCP server with the taskgate tools registered.
func New(d Dispatcher, r FileReader, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{d: d, r: r, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "taskgate",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taskgate_run",
		Description: "Run a plain-English file task inside the data root. Unrecognized tasks return a message; rejected or failed tasks return an error result.",
	}, s.handleRun)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taskgate_read",
		Description: "Read a file. Relative paths resolve against the data root.",
	}, s.handleRead)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taskgate_classify",
		Description: "Show which operation a task maps to and whether the sandbox would allow it, without running anything (dry-run).",
	}, s.handleClassify)
}
