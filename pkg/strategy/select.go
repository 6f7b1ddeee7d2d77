package strategy

import (
	"github.com/operon-project/lropoll/pkg/serializer"
	"github.com/operon-project/lropoll/pkg/transport"
)

// Select picks the poll strategy the initiating response asks for. The
// Azure-AsyncOperation header takes priority over Location; the first
// non-empty header wins. Returns nil when neither convention applies, in
// which case the caller should treat the operation as already completed
// (see NewCompletedPollStrategy). Pure; performs no I/O.
func Select(
	operationID string,
	initiatingResponse *transport.Response,
	originalResourceURL string,
	ser serializer.Serializer,
) PollStrategy {
	if s := TryCreateOperationResourceStrategy(operationID, initiatingResponse, originalResourceURL, ser); s != nil {
		return s
	}
	if s := TryCreateLocationStrategy(operationID, initiatingResponse); s != nil {
		return s
	}
	return nil
}

// SelectOrCompleted is Select with the fallback applied: operations that
// advertise no polling convention are taken as synchronously completed.
func SelectOrCompleted(
	operationID string,
	initiatingResponse *transport.Response,
	originalResourceURL string,
	ser serializer.Serializer,
) PollStrategy {
	if s := Select(operationID, initiatingResponse, originalResourceURL, ser); s != nil {
		return s
	}
	return NewCompletedPollStrategy(operationID, initiatingResponse)
}
