package serializer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Serializer turns response body text into typed values. Shared across
// strategies; implementations must be safe for concurrent use.
type Serializer interface {
	Deserialize(body string, v interface{}) error
}

// DeserializationError means the body could not be parsed as the expected
// shape. Distinct from a TransportError: the bytes arrived fine.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// IsDeserializationError reports whether err is, or wraps, a
// DeserializationError.
func IsDeserializationError(err error) bool {
	var de *DeserializationError
	return errors.As(err, &de)
}

// JSONSerializer deserializes JSON bodies.
type JSONSerializer struct{}

func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Deserialize(body string, v interface{}) error {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &DeserializationError{Err: err}
	}
	return nil
}
