package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/operon-project/lropoll/pkg/logger"
	"github.com/operon-project/lropoll/pkg/models"
	"github.com/operon-project/lropoll/pkg/strategy"
	"github.com/operon-project/lropoll/pkg/transport"
)

const defaultMaxElapsedTimeMinutes = 5

// OperationFailedError is returned when an operation reaches a terminal
// provisioning state other than Succeeded.
type OperationFailedError struct {
	OperationID       string
	ProvisioningState string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf(
		"operation %s failed with provisioning state %q",
		e.OperationID, e.ProvisioningState,
	)
}

// Poller drives poll strategies to completion. The poller owns retry and
// pacing; interpreting responses stays with the strategy, which never
// retries on its own.
type Poller struct {
	client transport.Client
}

func New(client transport.Client) *Poller {
	return &Poller{client: client}
}

// PollUntilDone runs one operation's poll loop: wait out the strategy's
// delay, issue the next poll request, feed the response back, repeat until
// the strategy reports done. Returns the last response seen, which for a
// successful status-resource operation is the materialized final resource.
func (p *Poller) PollUntilDone(
	ctx context.Context,
	s strategy.PollStrategy,
) (*transport.Response, error) {
	l := logger.Get()

	var last *transport.Response
	for !s.IsDone() {
		if err := sleepContext(ctx, s.Delay()); err != nil {
			return nil, err
		}

		req := s.CreatePollRequest()
		if !req.HasTarget() {
			// Only terminal states produce targetless requests, and
			// those report done. Guard against a stuck loop anyway.
			l.Warnf("Operation %s produced no poll target while not done", req.OperationID)
			break
		}

		resp, err := p.pollOnce(ctx, s, req)
		if err != nil {
			return nil, err
		}
		last = resp
		l.Debugf(
			"Operation %s polled %s, provisioning state %q, done=%t",
			req.OperationID, req.URL, s.ProvisioningState(), s.IsDone(),
		)
	}

	if last == nil {
		if holder, ok := s.(interface{ Result() *transport.Response }); ok {
			last = holder.Result()
		}
	}

	if state := s.ProvisioningState(); models.IsTerminalProvisioningState(state) &&
		!models.ProvisioningStateEquals(state, models.ProvisioningStateSucceeded) {
		return last, &OperationFailedError{
			OperationID:       s.CreatePollRequest().OperationID,
			ProvisioningState: state,
		}
	}
	return last, nil
}

// pollOnce executes one poll round, retrying transient transport and
// deserialization failures with exponential backoff. Each attempt re-issues
// the request; a response consumed by a failed update is never replayed.
func (p *Poller) pollOnce(
	ctx context.Context,
	s strategy.PollStrategy,
	req *transport.Request,
) (*transport.Response, error) {
	l := logger.Get()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsedTime()

	var result *transport.Response
	operation := func() error {
		resp, err := p.client.Do(ctx, req)
		if err != nil {
			l.Warnf("Poll of %s failed, will retry: %v", req.URL, err)
			return err
		}
		updated, err := s.UpdateFrom(ctx, resp)
		if err != nil {
			l.Warnf("Update from %s failed, will retry: %v", req.URL, err)
			return err
		}
		result = updated
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("polling %s for operation %s: %w", req.URL, req.OperationID, err)
	}
	return result, nil
}

// PollAll drives several operations concurrently, one goroutine and one
// strategy per operation. The first failure cancels the rest.
func (p *Poller) PollAll(
	ctx context.Context,
	strategies []strategy.PollStrategy,
) ([]*transport.Response, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*transport.Response, len(strategies))
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			resp, err := p.PollUntilDone(ctx, s)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func maxElapsedTime() time.Duration {
	if viper.IsSet("poll.max_elapsed_time_minutes") {
		return time.Duration(viper.GetInt("poll.max_elapsed_time_minutes")) * time.Minute
	}
	return defaultMaxElapsedTimeMinutes * time.Minute
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
