package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	taskgatev1 "github.com/ppiankov/taskgate/api/taskgate/v1"
	"github.com/ppiankov/taskgate/internal/dispatch"
	"github.com/ppiankov/taskgate/internal/model"
	"github.com/ppiankov/taskgate/internal/reader"
)

// defaultTimeout bounds calls whose context has no deadline.
const defaultTimeout = 5 * time.Minute

// Client connects to a taskgate gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client taskgatev1.TaskServiceClient
}

// New creates a gRPC client for addr. The connection is established lazily.
func New(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to task server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: taskgatev1.NewTaskServiceClient(conn),
	}, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

// Run dispatches instruction remotely. Rejected and failed tasks come back
// as Outcomes; the error is reserved for transport problems.
func (c *Client) Run(ctx context.Context, instruction string) (model.Outcome, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Run(ctx, wrapperspb.String(instruction))
	if err == nil {
		return outcomeFromStruct(resp), nil
	}

	st := status.Convert(err)
	switch st.Code() {
	case codes.PermissionDenied, codes.Internal:
		for _, d := range st.Details() {
			if s, ok := d.(*structpb.Struct); ok {
				out := outcomeFromStruct(s)
				if out.Kind == model.KindOperationFailed {
					out.Err = fmt.Errorf("%s", out.Message)
				}
				return out, nil
			}
		}
		if st.Code() == codes.PermissionDenied {
			return model.Outcome{Kind: model.KindSecurityRejected, Message: st.Message(), Instruction: instruction}, nil
		}
		return model.Failed(instruction, model.Unrecognized, fmt.Errorf("%s", st.Message())), nil
	}
	return model.Outcome{}, err
}

// Read fetches a file remotely. NotFound and PermissionDenied map back to
// the reader sentinels.
func (c *Client) Read(ctx context.Context, path string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Read(ctx, wrapperspb.String(path))
	switch status.Code(err) {
	case codes.OK:
		return resp.GetFields()["content"].GetStringValue(), nil
	case codes.NotFound:
		return "", reader.ErrNotFound
	case codes.PermissionDenied:
		return "", reader.ErrOutsideRoot
	}
	return "", err
}

// Classify returns the remote dry-run plan for instruction.
func (c *Client) Classify(ctx context.Context, instruction string) (dispatch.Plan, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Classify(ctx, wrapperspb.String(instruction))
	if err != nil {
		return dispatch.Plan{}, err
	}
	f := resp.GetFields()
	return dispatch.Plan{
		Instruction: f["instruction"].GetStringValue(),
		Operation:   operationID(f["operation"].GetStringValue()),
		Rule:        f["rule"].GetStringValue(),
		Decision: model.SandboxDecision{
			Allowed: f["allowed"].GetBoolValue(),
			Reason:  model.DenyReason(f["reason"].GetStringValue()),
			Detail:  f["detail"].GetStringValue(),
		},
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func outcomeFromStruct(s *structpb.Struct) model.Outcome {
	f := s.GetFields()
	return model.Outcome{
		Kind:        model.OutcomeKind(f["kind"].GetStringValue()),
		Message:     f["message"].GetStringValue(),
		Instruction: f["instruction"].GetStringValue(),
		Operation:   operationID(f["operation"].GetStringValue()),
		Reason:      model.DenyReason(f["reason"].GetStringValue()),
	}
}

// operationID undoes OperationID.String for the unrecognized case.
func operationID(s string) model.OperationID {
	if s == model.Unrecognized.String() {
		return model.Unrecognized
	}
	return model.OperationID(s)
}
