package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/taskgate/internal/model"
	"github.com/ppiankov/taskgate/internal/reader"
)

// RunInput defines parameters for the taskgate_run tool.
type RunInput struct {
	Task string `json:"task" jsonschema:"plain-English task description"`
}

// RunOutput carries the dispatch outcome.
type RunOutput struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ReadInput defines parameters for the taskgate_read tool.
type ReadInput struct {
	Path string `json:"path" jsonschema:"file path, absolute or relative to the data root"`
}

// ReadOutput contains file content or the reason it could not be read.
type ReadOutput struct {
	Content string `json:"content,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// ClassifyInput defines parameters for the taskgate_classify tool.
type ClassifyInput struct {
	Task string `json:"task" jsonschema:"plain-English task description"`
}

// ClassifyOutput is the dry-run plan.
type ClassifyOutput struct {
	Operation string `json:"operation"`
	Rule      string `json:"rule,omitempty"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (s *Server) handleRun(ctx context.Context, req *mcpsdk.CallToolRequest, input RunInput) (*mcpsdk.CallToolResult, RunOutput, error) {
	out := s.d.Run(ctx, input.Task)
	res := RunOutput{
		Kind:      string(out.Kind),
		Message:   out.Message,
		Operation: string(out.Operation),
		Reason:    string(out.Reason),
	}
	switch out.Kind {
	case model.KindSecurityRejected, model.KindOperationFailed:
		return &mcpsdk.CallToolResult{IsError: true}, res, nil
	}
	return nil, res, nil
}

func (s *Server) handleRead(ctx context.Context, req *mcpsdk.CallToolRequest, input ReadInput) (*mcpsdk.CallToolResult, ReadOutput, error) {
	content, err := s.r.Read(input.Path)
	switch {
	case err == nil:
		return nil, ReadOutput{Content: content}, nil
	case errors.Is(err, reader.ErrOutsideRoot):
		return &mcpsdk.CallToolResult{IsError: true}, ReadOutput{Detail: "Path is outside the data root"}, nil
	case errors.Is(err, reader.ErrNotFound):
		return &mcpsdk.CallToolResult{IsError: true}, ReadOutput{Detail: "File not found"}, nil
	}
	s.logger.ErrorContext(ctx, "read failed", "path", input.Path, "error", err)
	return nil, ReadOutput{}, err
}

func (s *Server) handleClassify(ctx context.Context, req *mcpsdk.CallToolRequest, input ClassifyInput) (*mcpsdk.CallToolResult, ClassifyOutput, error) {
	p := s.d.Plan(input.Task)
	return nil, ClassifyOutput{
		Operation: p.Operation.String(),
		Rule:      p.Rule,
		Allowed:   p.Decision.Allowed,
		Reason:    string(p.Decision.Reason),
		Detail:    p.Decision.Detail,
	}, nil
}
