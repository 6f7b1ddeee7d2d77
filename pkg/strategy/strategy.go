package strategy

import (
	"context"
	"strconv"
	"time"

	"github.com/operon-project/lropoll/pkg/transport"
)

// Header names services use to drive long running operation polling.
const (
	// AsyncOperationHeader carries the URL of the dedicated status
	// resource for an operation.
	AsyncOperationHeader = "Azure-AsyncOperation"
	// LocationHeader carries the URL to re-GET until the operation
	// stops answering 202.
	LocationHeader = "Location"
	// RetryAfterHeader carries the server-suggested delay, in whole
	// seconds, before the next poll.
	RetryAfterHeader = "Retry-After"
)

// UpdateResult is the outcome of one asynchronous update: the poll response
// passed through to the caller, or the error that round produced.
type UpdateResult struct {
	Response *transport.Response
	Err      error
}

// PollStrategy knows, for one long running operation, which URL to hit next
// and how to interpret what comes back. One instance per operation; callers
// must serialize updates (poll, update, decide, repeat) — no concurrent
// mutation is supported.
type PollStrategy interface {
	// CreatePollRequest builds the next GET to issue. A targetless
	// request means nothing more needs fetching.
	CreatePollRequest() *transport.Request

	// UpdateFromAsync consumes one poll response off the calling
	// goroutine and delivers exactly one UpdateResult.
	UpdateFromAsync(ctx context.Context, resp *transport.Response) <-chan UpdateResult

	// UpdateFrom is the blocking form of UpdateFromAsync: it waits for
	// the asynchronous update to finish and propagates its outcome.
	UpdateFrom(ctx context.Context, resp *transport.Response) (*transport.Response, error)

	// IsDone reports whether polling has finished. Pure query.
	IsDone() bool

	// Delay is the wait before the next poll. Zero once terminal.
	Delay() time.Duration

	// ProvisioningState is the last provisioning state observed, or ""
	// if none has been seen.
	ProvisioningState() string
}

// base carries the delay and provisioning-state bookkeeping every strategy
// shares.
type base struct {
	delay             time.Duration
	provisioningState string
}

func newBase() base {
	return base{delay: DefaultDelay()}
}

func (b *base) Delay() time.Duration {
	return b.delay
}

func (b *base) ProvisioningState() string {
	return b.provisioningState
}

func (b *base) setProvisioningState(state string) {
	b.provisioningState = state
}

// updateDelayFrom overwrites the delay with the response's Retry-After
// value when one is present and parseable; otherwise the delay is left
// alone.
func (b *base) updateDelayFrom(resp *transport.Response) {
	raw := resp.HeaderValue(RetryAfterHeader)
	if raw == "" {
		return
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return
	}
	b.delay = time.Duration(seconds) * time.Second
}

func (b *base) clearDelay() {
	b.delay = 0
}

// awaitUpdate derives the blocking update form from the asynchronous one.
func awaitUpdate(ch <-chan UpdateResult) (*transport.Response, error) {
	result := <-ch
	return result.Response, result.Err
}
