package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/chapool/txengine/internal/util/jsonx"
)

// RPCCall is one request seen by an RPCServer.
type RPCCall struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// Param decodes the i-th parameter of the call into out, failing the test on error.
func (c RPCCall) Param(t *testing.T, i int, out any) {
	t.Helper()

	if i >= len(c.Params) {
		t.Fatalf("%s: want param %d, got %d params", c.Method, i, len(c.Params))
	}
	if err := jsonx.Unmarshal(c.Params[i], out); err != nil {
		t.Fatalf("%s: failed to decode param %d: %v", c.Method, i, err)
	}
}

// RPCHandler answers one call. The returned value becomes the result, an *RPCErrorResponse
// becomes the error object, a RawResponse is written verbatim.
type RPCHandler func(call RPCCall) (any, error)

// RPCErrorResponse is written as the JSON-RPC error object.
type RPCErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCErrorResponse) Error() string {
	return e.Message
}

// RawResponse bypasses the JSON-RPC envelope.
type RawResponse struct {
	Status int
	Body   string
}

func (r *RawResponse) Error() string {
	return "raw response"
}

// Result returns a handler that always answers result.
func Result(result any) RPCHandler {
	return func(RPCCall) (any, error) {
		return result, nil
	}
}

// Fail returns a handler that always answers with a JSON-RPC error.
func Fail(code int, message string) RPCHandler {
	return func(RPCCall) (any, error) {
		return nil, &RPCErrorResponse{Code: code, Message: message}
	}
}

// Raw returns a handler that writes body with status.
func Raw(status int, body string) RPCHandler {
	return func(RPCCall) (any, error) {
		return nil, &RawResponse{Status: status, Body: body}
	}
}

// RPCServer is an httptest.Server speaking JSON-RPC 2.0 that records every call.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]RPCHandler
	calls    []RPCCall
}

// NewRPCServer starts a server dispatching to handlers by method name. Unknown methods answer -32601.
// The server is closed when the test finishes.
func NewRPCServer(t *testing.T, handlers map[string]RPCHandler) *RPCServer {
	t.Helper()

	s := &RPCServer{handlers: map[string]RPCHandler{}}
	for method, h := range handlers {
		s.handlers[method] = h
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)

	return s
}

// Handle replaces the handler of method.
func (s *RPCServer) Handle(method string, h RPCHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Calls returns the recorded calls in arrival order.
func (s *RPCServer) Calls() []RPCCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RPCCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Methods returns the method names of the recorded calls in arrival order.
func (s *RPCServer) Methods() []string {
	calls := s.Calls()
	methods := make([]string, 0, len(calls))
	for _, c := range calls {
		methods = append(methods, c.Method)
	}
	return methods
}

// CallsTo returns the recorded calls of method.
func (s *RPCServer) CallsTo(method string) []RPCCall {
	var out []RPCCall
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *RPCServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var call RPCCall
	if err := jsonx.Unmarshal(body, &call); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h, ok := s.handlers[call.Method]
	s.mu.Unlock()

	response := map[string]any{
		"jsonrpc": "2.0",
		"id":      call.ID,
	}

	if !ok {
		response["error"] = &RPCErrorResponse{Code: -32601, Message: "the method " + call.Method + " does not exist/is not available"}
		writeJSON(w, http.StatusOK, response)
		return
	}

	result, err := h(call)
	if err != nil {
		switch e := err.(type) { //nolint:errorlint // handler sentinels are never wrapped
		case *RawResponse:
			w.WriteHeader(e.Status)
			_, _ = io.WriteString(w, e.Body)
		case *RPCErrorResponse:
			response["error"] = e
			writeJSON(w, http.StatusOK, response)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	response["result"] = result
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonx.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
