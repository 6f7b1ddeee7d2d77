package testdata

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/operon-project/lropoll/pkg/transport"
)

// FakeResponse wraps canned headers/body the way the live client would.
func FakeResponse(statusCode int, headers map[string]string, body string) *transport.Response {
	header := http.Header{}
	for name, value := range headers {
		header.Set(name, value)
	}
	return transport.NewResponse(&http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	})
}

// StatusBody returns an operation status document with the given
// provisioning state.
func StatusBody(provisioningState string) string {
	return fmt.Sprintf(
		`{"id":"/operations/op1","name":"op1","properties":{"provisioningState":%q}}`,
		provisioningState,
	)
}

// AcceptedResponse returns an initiating 202 carrying the given headers.
func AcceptedResponse(headers map[string]string) *transport.Response {
	return FakeResponse(http.StatusAccepted, headers, "")
}
