package strategy

import (
	"context"
	"strings"

	"github.com/operon-project/lropoll/pkg/logger"
	"github.com/operon-project/lropoll/pkg/models"
	"github.com/operon-project/lropoll/pkg/serializer"
	"github.com/operon-project/lropoll/pkg/transport"
)

// OperationResourcePollStrategy polls the dedicated status resource named
// by the Azure-AsyncOperation header until it reports a terminal
// provisioning state, then, on success, GETs the original resource URL once
// to pick up the operation's actual result document.
//
// State machine:
//
//	Polling -> Failed
//	Polling -> SucceededPendingFetch -> SucceededFetched
//
// Transitions only move forward; a status payload observed after a terminal
// state cannot reopen the operation.
type OperationResourcePollStrategy struct {
	base

	operationID         string
	statusResourceURL   string
	originalResourceURL string
	serializer          serializer.Serializer

	state models.PollState
}

// TryCreateOperationResourceStrategy builds the strategy from the
// initiating response, or returns nil when the response carries no
// Azure-AsyncOperation header.
func TryCreateOperationResourceStrategy(
	operationID string,
	initiatingResponse *transport.Response,
	originalResourceURL string,
	ser serializer.Serializer,
) *OperationResourcePollStrategy {
	statusURL := initiatingResponse.HeaderValue(AsyncOperationHeader)
	if statusURL == "" {
		return nil
	}
	return &OperationResourcePollStrategy{
		base:                newBase(),
		operationID:         operationID,
		statusResourceURL:   statusURL,
		originalResourceURL: originalResourceURL,
		serializer:          ser,
		state:               models.StatePolling,
	}
}

func (s *OperationResourcePollStrategy) CreatePollRequest() *transport.Request {
	var pollURL string
	switch s.state {
	case models.StatePolling:
		pollURL = s.statusResourceURL
	case models.StateSucceededPendingFetch:
		pollURL = s.originalResourceURL
	}
	return transport.NewGetRequest(s.operationID, pollURL)
}

func (s *OperationResourcePollStrategy) UpdateFromAsync(
	ctx context.Context,
	resp *transport.Response,
) <-chan UpdateResult {
	out := make(chan UpdateResult, 1)
	go func() {
		defer close(out)
		out <- s.update(ctx, resp)
	}()
	return out
}

func (s *OperationResourcePollStrategy) UpdateFrom(
	ctx context.Context,
	resp *transport.Response,
) (*transport.Response, error) {
	return awaitUpdate(s.UpdateFromAsync(ctx, resp))
}

// update is the single transition function. The response is passed through
// unchanged on every path; only the error path withholds it.
func (s *OperationResourcePollStrategy) update(
	ctx context.Context,
	resp *transport.Response,
) UpdateResult {
	switch s.state {
	case models.StatePolling:
		s.updateDelayFrom(resp)
		body, err := resp.BodyAsString(ctx)
		if err != nil {
			return UpdateResult{Err: err}
		}
		if err := s.advance(body); err != nil {
			return UpdateResult{Err: err}
		}
		return UpdateResult{Response: resp}

	case models.StateSucceededPendingFetch:
		// Whatever came back is taken as the final resource; the body
		// is the caller's to interpret.
		s.state = models.StateSucceededFetched
		return UpdateResult{Response: resp}

	default:
		return UpdateResult{Response: resp}
	}
}

// advance interprets one status payload while polling. A body that cannot
// be parsed fails the round without touching any state; a parseable body
// with no resource or no properties block means the service has nothing to
// say yet and the operation stays in Polling.
func (s *OperationResourcePollStrategy) advance(body string) error {
	l := logger.Get()

	if strings.TrimSpace(body) == "" {
		return nil
	}

	var resource *models.OperationResource
	if err := s.serializer.Deserialize(body, &resource); err != nil {
		return err
	}
	if resource == nil || resource.Properties == nil {
		return nil
	}

	provisioningState := resource.Properties.ProvisioningState
	s.setProvisioningState(provisioningState)
	if models.ProvisioningStateEquals(provisioningState, models.ProvisioningStateInProgress) {
		return nil
	}

	s.clearDelay()
	if models.ProvisioningStateEquals(provisioningState, models.ProvisioningStateSucceeded) {
		s.state = models.StateSucceededPendingFetch
	} else {
		s.state = models.StateFailed
	}
	l.Debugf(
		"Operation %s reached terminal provisioning state %q (%s)",
		s.operationID, provisioningState, s.state,
	)
	return nil
}

func (s *OperationResourcePollStrategy) IsDone() bool {
	return s.state.Done()
}

// State exposes the current machine state for callers that want to report
// progress.
func (s *OperationResourcePollStrategy) State() models.PollState {
	return s.state
}

// PollingCompleted reports whether a terminal provisioning state has been
// observed.
func (s *OperationResourcePollStrategy) PollingCompleted() bool {
	return s.state != models.StatePolling
}

// PollingSucceeded reports whether the terminal provisioning state was
// Succeeded. Meaningful only once PollingCompleted is true.
func (s *OperationResourcePollStrategy) PollingSucceeded() bool {
	return s.state == models.StateSucceededPendingFetch || s.state == models.StateSucceededFetched
}

// GotFinalResource reports whether the follow-up GET of the original
// resource has been consumed.
func (s *OperationResourcePollStrategy) GotFinalResource() bool {
	return s.state == models.StateSucceededFetched
}
