package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// NoResultMessage is the RPCError message for a response that carries neither result nor error.
const NoResultMessage = "no result"

// ErrEmptyBody is wrapped by TransportError when the node answered without a body.
var ErrEmptyBody = errors.New("empty response body")

// TransportError means the node could not be reached or did not answer with JSON-RPC.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("rpc transport %s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": http %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Method  string          `json:"-"`
}

func (e *RPCError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("rpc error %d in %s: %s", e.Code, e.Method, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsTransport reports whether err wraps a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
