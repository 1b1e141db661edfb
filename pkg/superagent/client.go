// Package superagent is a typed client for the Superagent REST API.
//
// Every method maps one-to-one onto a remote endpoint. The client performs no
// retries, caching or batching, and by default it never inspects the HTTP
// status code: the decoded JSON body is handed back to the caller whatever the
// status, exactly like the dashboard's original fetch wrapper. Callers that want
// non-2xx responses turned into errors construct the client WithStrictStatus.
//
// A Client is scoped to a single bearer token. Build one per user request.
//
// Usage:
//
//	c := superagent.New("https://api.superagent.sh/api/v1", profile.APIKey)
//	agents, err := c.GetAgents(ctx, nil) // skip=0&take=300
package superagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// missingToken is what the original wrapper sent when no token was supplied
// (`Bearer ${undefined}`). The remote API rejects it like any other bad key.
const missingToken = "undefined"

// Client issues requests against a single base URL with a fixed bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	strict  bool
	header  http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (e.g. one with an
// instrumented transport). The default client has no timeout; cancellation
// happens only through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithStrictStatus makes every call return an *APIError for non-2xx responses.
func WithStrictStatus() Option {
	return func(c *Client) { c.strict = true }
}

// WithHeader adds a header sent on every request, after the defaults and
// before per-call headers.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// New creates a client for baseURL authorised with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// RequestOptions are the per-call knobs of Fetch.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON-encoded verbatim. A nil Body sends no body.
	Body any
	// Header entries override the default headers.
	Header http.Header
}

// Fetch is the HTTP client wrapper: it joins the base URL with endpoint,
// appends query in insertion order, sets the JSON content type and bearer
// token, merges opts.Header on top, and decodes the JSON response body into
// out regardless of the status code. It returns the HTTP status code.
//
// A response with an empty body leaves out untouched.
func (c *Client) Fetch(ctx context.Context, endpoint string, opts RequestOptions, query *Query, out any) (int, error) {
	u, err := c.URL(endpoint, query)
	if err != nil {
		return 0, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, "application/json", opts.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if c.strict && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       endpoint,
			Body:       string(respBody),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s response (%d): %w", method, endpoint, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// URL builds base + endpoint with the query appended in insertion order.
func (c *Client) URL(endpoint string, query *Query) (string, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if encoded := query.Encode(); encoded != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + encoded
		} else {
			u.RawQuery = encoded
		}
	}
	return u.String(), nil
}

// AuthorizationHeader returns the value sent in the Authorization header.
func (c *Client) AuthorizationHeader() string {
	token := c.token
	if token == "" {
		token = missingToken
	}
	return "Bearer " + token
}

func (c *Client) setHeaders(req *http.Request, contentType string, extra http.Header) {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", c.AuthorizationHeader())
	for k, vs := range c.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
}

// call is the typed path every resource method goes through.
func call[T any](ctx context.Context, c *Client, method, endpoint string, body any, query *Query) (*Response[T], error) {
	resp := &Response[T]{}
	status, err := c.Fetch(ctx, endpoint, RequestOptions{Method: method, Body: body}, query, resp)
	resp.StatusCode = status
	return resp, err
}

func path(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
