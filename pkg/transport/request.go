package transport

import "net/http"

// Request describes one HTTP call. A Request with an empty URL is valid and
// means "nothing to fetch this round"; executing it is a caller error.
type Request struct {
	// OperationID identifies the long running operation the request
	// belongs to. Diagnostics only; never sent on the wire.
	OperationID string
	Method      string
	URL         string
	Body        string
	Headers     http.Header
}

// NewGetRequest builds a GET for url. An empty url produces a targetless
// request.
func NewGetRequest(operationID, url string) *Request {
	return &Request{
		OperationID: operationID,
		Method:      http.MethodGet,
		URL:         url,
	}
}

// HasTarget reports whether the request names a URL to fetch.
func (r *Request) HasTarget() bool {
	return r != nil && r.URL != ""
}
