package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	taskgatev1 "github.com/ppiankov/taskgate/api/taskgate/v1"
	"github.com/ppiankov/taskgate/internal/dispatch"
	"github.com/ppiankov/taskgate/internal/model"
	"github.com/ppiankov/taskgate/internal/reader"
)

// Config holds gRPC server configuration.
type Config struct {
	Port int
}

// Dispatcher runs and plans instructions.
type Dispatcher interface {
	Run(ctx context.Context, instruction string) model.Outcome
	Plan(instruction string) dispatch.Plan
}

// FileReader returns file contents.
type FileReader interface {
	Read(path string) (string, error)
}

// Server implements the TaskService gRPC server.
type Server struct {
	taskgatev1.UnimplementedTaskServiceServer

	d      Dispatcher
	r      FileReader
	logger *slog.Logger
	cfg    Config

	grpcServer *grpc.Server
}

// New creates a gRPC server over d and r. A nil logger discards logs.
func New(cfg Config, d Dispatcher, r FileReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		d:          d,
		r:          r,
		logger:     logger,
		cfg:        cfg,
		grpcServer: grpc.NewServer(),
	}
	taskgatev1.RegisterTaskServiceServer(s.grpcServer, s)
	return s
}

// Serve starts the gRPC server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	return s.grpcServer.Serve(lis)
}

// ServeOn starts the gRPC server on the given listener. For testing.
func (s *Server) ServeOn(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully shuts down the gRPC server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Run implements the Run RPC. Rejections and failures become status errors;
// unrecognized instructions are a normal response.
func (s *Server) Run(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	instruction := req.GetValue()
	if instruction == "" {
		return nil, status.Error(codes.InvalidArgument, "instruction is required")
	}

	out := s.d.Run(ctx, instruction)
	switch out.Kind {
	case model.KindSecurityRejected:
		return nil, outcomeStatus(codes.PermissionDenied, out)
	case model.KindOperationFailed:
		return nil, outcomeStatus(codes.Internal, out)
	}
	return outcomeStruct(out)
}

func outcomeStruct(out model.Outcome) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"kind":        string(out.Kind),
		"message":     out.Message,
		"instruction": out.Instruction,
		"operation":   string(out.Operation),
		"reason":      string(out.Reason),
	})
}

// outcomeStatus carries the full outcome as a status detail so clients can
// rebuild it.
func outcomeStatus(code codes.Code, out model.Outcome) error {
	st := status.New(code, out.Message)
	detail, err := outcomeStruct(out)
	if err != nil {
		return st.Err()
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		return withDetail.Err()
	}
	return st.Err()
}

// Read implements the Read RPC.
func (s *Server) Read(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	content, err := s.r.Read(req.GetValue())
	switch {
	case errors.Is(err, reader.ErrOutsideRoot):
		return nil, status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, reader.ErrNotFound):
		return nil, status.Error(codes.NotFound, "File not found")
	case err != nil:
		s.logger.ErrorContext(ctx, "read failed", "path", req.GetValue(), "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return structpb.NewStruct(map[string]any{"content": content})
}

// Classify implements the Classify RPC. Nothing is executed.
func (s *Server) Classify(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	p := s.d.Plan(req.GetValue())
	return structpb.NewStruct(map[string]any{
		"instruction": p.Instruction,
		"operation":   p.Operation.String(),
		"rule":        p.Rule,
		"allowed":     p.Decision.Allowed,
		"reason":      string(p.Decision.Reason),
		"detail":      p.Decision.Detail,
		"expect":      p.Expect(),
	})
}
