package strategy

import (
	"context"

	"github.com/operon-project/lropoll/pkg/transport"
)

// CompletedPollStrategy is the fallback for operations that finished inside
// the initiating request: there is nothing to poll, and the initiating
// response is already the result.
type CompletedPollStrategy struct {
	base

	operationID string
	result      *transport.Response
}

func NewCompletedPollStrategy(
	operationID string,
	initiatingResponse *transport.Response,
) *CompletedPollStrategy {
	return &CompletedPollStrategy{
		operationID: operationID,
		result:      initiatingResponse,
	}
}

func (s *CompletedPollStrategy) CreatePollRequest() *transport.Request {
	return transport.NewGetRequest(s.operationID, "")
}

func (s *CompletedPollStrategy) UpdateFromAsync(
	ctx context.Context,
	resp *transport.Response,
) <-chan UpdateResult {
	out := make(chan UpdateResult, 1)
	out <- UpdateResult{Response: resp}
	close(out)
	return out
}

func (s *CompletedPollStrategy) UpdateFrom(
	ctx context.Context,
	resp *transport.Response,
) (*transport.Response, error) {
	return awaitUpdate(s.UpdateFromAsync(ctx, resp))
}

func (s *CompletedPollStrategy) IsDone() bool {
	return true
}

// Result returns the initiating response so the poll loop can hand it back
// as the operation's outcome.
func (s *CompletedPollStrategy) Result() *transport.Response {
	return s.result
}
