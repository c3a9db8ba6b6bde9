package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/chapool/txengine/internal/util"
	"github.com/chapool/txengine/internal/util/jsonx"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "txengine/1.0"
	maxResponseBytes = 32 << 20
	maxErrorBody     = 512
)

// Caller issues one JSON-RPC call and returns the raw result.
type Caller interface {
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// Client is a JSON-RPC 2.0 client bound to one endpoint.
// Request ids come from a counter owned by the client. No call is retried.
type Client struct {
	endpoint   Endpoint
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	timeout    time.Duration
	nextID     atomic.Uint64
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The endpoint proxy is not applied to it.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps the client at rps requests per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout bounds every HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		userAgent: defaultUserAgent,
		timeout:   defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib default
		if endpoint.Proxy != nil {
			transport.Proxy = http.ProxyURL(endpoint.Proxy)
		}
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: transport,
		}
	}

	return c
}

// Endpoint returns the endpoint the client is bound to.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Close closes idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Call sends method with params and returns the raw result, which may be the literal null.
//
// An error object in the response yields *RPCError, a response without result yields
// *RPCError{Message: "no result"}. Network failures, empty bodies and non-2xx answers
// without a JSON-RPC error yield *TransportError.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	started := time.Now()
	result, err := c.call(ctx, method, params)
	observeCall(method, started, err)
	return result, err
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	id := c.nextID.Add(1)
	log := util.LogFromContext(ctx).With().
		Str("method", method).
		Uint64("id", id).
		Str("endpoint", c.endpoint.String()).
		Logger()

	entry := TraceEntry{ID: id, Method: method}
	trace := TraceFromContext(ctx)
	fail := func(err error) (json.RawMessage, error) {
		entry.Err = err.Error()
		trace.record(entry)
		log.Error().Err(err).Msg("RPC call failed")
		return nil, err
	}

	transportErr := func(statusCode int, body []byte, err error) *TransportError {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &TransportError{
			Method:     method,
			URL:        c.endpoint.String(),
			StatusCode: statusCode,
			Body:       string(body),
			Err:        err,
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(transportErr(0, nil, errors.Wrap(err, "rate limit")))
		}
	}

	payload, err := jsonx.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fail(errors.Wrapf(err, "failed to encode %s request", method))
	}
	entry.Request = string(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(transportErr(0, nil, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	log.Debug().Msg("Sending RPC request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(transportErr(0, nil, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	entry.StatusCode = resp.StatusCode
	entry.Response = string(body)
	if err != nil {
		return fail(transportErr(resp.StatusCode, body, errors.Wrap(err, "failed to read response")))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return fail(transportErr(resp.StatusCode, nil, ErrEmptyBody))
	}

	var envelope map[string]json.RawMessage
	if err := jsonx.Unmarshal(body, &envelope); err != nil {
		return fail(transportErr(resp.StatusCode, body, errors.Wrap(err, "malformed JSON-RPC response")))
	}

	if rawErr, ok := envelope["error"]; ok && !jsonx.IsNull(rawErr) {
		rpcErr := &RPCError{}
		if err := jsonx.Unmarshal(rawErr, rpcErr); err != nil {
			return fail(transportErr(resp.StatusCode, body, errors.Wrap(err, "malformed JSON-RPC error")))
		}
		rpcErr.Method = method
		return fail(rpcErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fail(transportErr(resp.StatusCode, body, errors.Errorf("unexpected status %s", resp.Status)))
	}

	result, ok := envelope["result"]
	if !ok {
		return fail(&RPCError{Message: NoResultMessage, Method: method})
	}

	trace.record(entry)
	log.Debug().Int("status", resp.StatusCode).Msg("Received RPC response")

	return result, nil
}
