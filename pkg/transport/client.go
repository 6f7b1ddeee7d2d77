package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/operon-project/lropoll/pkg/logger"
)

const defaultRequestTimeoutSeconds = 60

// Client executes requests. Implementations must return a *TransportError
// for wire failures and must never retry on their own.
type Client interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// LiveClient is the net/http backed Client.
type LiveClient struct {
	httpClient *http.Client
}

func NewLiveClient() *LiveClient {
	timeout := defaultRequestTimeoutSeconds * time.Second
	if viper.IsSet("transport.request_timeout_seconds") {
		timeout = time.Duration(viper.GetInt("transport.request_timeout_seconds")) * time.Second
	}
	return &LiveClient{
		httpClient: &http.Client{
			Timeout: timeout,
			// Location-driven polling reads redirect headers itself.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// NewLiveClientWithHTTPClient lets tests and embedders supply their own
// *http.Client.
func NewLiveClientWithHTTPClient(hc *http.Client) *LiveClient {
	return &LiveClient{httpClient: hc}
}

func (c *LiveClient) Do(ctx context.Context, req *Request) (*Response, error) {
	l := logger.Get()

	if !req.HasTarget() {
		return nil, fmt.Errorf("request for operation %q has no target URL", req.OperationID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, strings.NewReader(req.Body))
	if err != nil {
		return nil, &TransportError{Op: "build request", URL: req.URL, Err: err}
	}
	for name, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	l.Debugf("Executing %s %s for operation %s", req.Method, req.URL, req.OperationID)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "execute request", URL: req.URL, Err: err}
	}

	return NewResponse(httpResp), nil
}
