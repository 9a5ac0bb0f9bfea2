// internal/common/camunda/camundatest/client.go
package camundatest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// Command is one job command received by the fake gateway. CtxErr is the
// state of the send context when the gateway saw the request.
type Command struct {
	Kind         string
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    string
	CtxErr       error
}

const (
	KindComplete = "complete"
	KindFail     = "fail"
	KindThrow    = "throw"
)

// JobClient is a worker.JobClient backed by an in-memory gateway that
// records every complete, fail and throw command.
type JobClient struct {
	gateway *gateway
}

func NewJobClient() *JobClient {
	return &JobClient{gateway: &gateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// Commands returns the recorded commands in arrival order.
func (c *JobClient) Commands() []Command {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]Command(nil), c.gateway.commands...)
}

// Last returns the most recent command, or false when none was sent.
func (c *JobClient) Last() (Command, bool) {
	cmds := c.Commands()
	if len(cmds) == 0 {
		return Command{}, false
	}
	return cmds[len(cmds)-1], true
}

// NewJob builds an activated job whose variables are vars encoded as JSON.
func NewJob(key int64, taskType string, retries int32, vars interface{}) entities.Job {
	raw, _ := json.Marshal(vars)
	if s, ok := vars.(string); ok {
		raw = []byte(s)
	}
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               taskType,
		ProcessInstanceKey: key * 10,
		Retries:            retries,
		Variables:          string(raw),
	}}
}

type gateway struct {
	pb.GatewayClient

	mu       sync.Mutex
	commands []Command
}

func (g *gateway) record(cmd Command) {
	g.mu.Lock()
	g.commands = append(g.commands, cmd)
	g.mu.Unlock()
}

func (g *gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.record(Command{Kind: KindComplete, JobKey: in.JobKey, Variables: in.Variables, CtxErr: ctx.Err()})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.record(Command{Kind: KindFail, JobKey: in.JobKey, Retries: in.Retries, ErrorMessage: in.ErrorMessage, Variables: in.Variables, CtxErr: ctx.Err()})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.record(Command{Kind: KindThrow, JobKey: in.JobKey, ErrorCode: in.ErrorCode, ErrorMessage: in.ErrorMessage, Variables: in.Variables, CtxErr: ctx.Err()})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}
