package strategy

import (
	"context"
	"net/http"

	"github.com/operon-project/lropoll/pkg/transport"
)

// LocationPollStrategy polls the URL from the Location header. The service
// answers 202 Accepted while the operation is still running, refreshing the
// poll URL through each response's own Location header when one is present;
// the first non-202 response is the operation's result and ends polling.
type LocationPollStrategy struct {
	base

	operationID string
	locationURL string
	done        bool
}

// TryCreateLocationStrategy builds the strategy from the initiating
// response, or returns nil when the response carries no Location header.
func TryCreateLocationStrategy(
	operationID string,
	initiatingResponse *transport.Response,
) *LocationPollStrategy {
	location := initiatingResponse.HeaderValue(LocationHeader)
	if location == "" {
		return nil
	}
	return &LocationPollStrategy{
		base:        newBase(),
		operationID: operationID,
		locationURL: location,
	}
}

func (s *LocationPollStrategy) CreatePollRequest() *transport.Request {
	var pollURL string
	if !s.done {
		pollURL = s.locationURL
	}
	return transport.NewGetRequest(s.operationID, pollURL)
}

func (s *LocationPollStrategy) UpdateFromAsync(
	ctx context.Context,
	resp *transport.Response,
) <-chan UpdateResult {
	out := make(chan UpdateResult, 1)
	go func() {
		defer close(out)
		if s.done {
			out <- UpdateResult{Response: resp}
			return
		}
		s.updateDelayFrom(resp)
		if resp.StatusCode() == http.StatusAccepted {
			if location := resp.HeaderValue(LocationHeader); location != "" {
				s.locationURL = location
			}
		} else {
			s.done = true
			s.clearDelay()
		}
		out <- UpdateResult{Response: resp}
	}()
	return out
}

func (s *LocationPollStrategy) UpdateFrom(
	ctx context.Context,
	resp *transport.Response,
) (*transport.Response, error) {
	return awaitUpdate(s.UpdateFromAsync(ctx, resp))
}

func (s *LocationPollStrategy) IsDone() bool {
	return s.done
}
