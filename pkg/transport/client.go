package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-deposit/pkg/logging"
)

// Client issues requests described by RequestArgs.
type Client interface {
	Do(ctx context.Context, args RequestArgs) Result
}

// ClientFunc lets plain functions satisfy Client.
type ClientFunc func(ctx context.Context, args RequestArgs) Result

// Do calls fn.
func (fn ClientFunc) Do(ctx context.Context, args RequestArgs) Result {
	if fn == nil {
		return FailErr(errors.New("client func is nil"))
	}
	return fn(ctx, args)
}

// Get issues a GET for target through client.
func Get(ctx context.Context, client Client, target string) Result {
	if client == nil {
		return FailErr(errors.New("client is nil"))
	}
	return client.Do(ctx, RequestArgs{URL: target, Method: http.MethodGet})
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimSpace(base)
	}
}

// WithHeaders adds static headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *HTTPClient) {
		for key, value := range headers {
			if key = strings.TrimSpace(key); key != "" {
				c.headers.Set(key, value)
			}
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logging.OrNop(logger)
	}
}

// HTTPClient implements Client over net/http with JSON bodies.
type HTTPClient struct {
	http    *http.Client
	timeout time.Duration
	baseURL string
	headers http.Header
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs a client; without options it uses
// http.DefaultClient and no base URL.
func NewHTTPClient(options ...Option) *HTTPClient {
	c := &HTTPClient{
		http:    http.DefaultClient,
		headers: make(http.Header),
		logger:  logging.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Do performs the request. Non-2xx statuses become failures carrying the
// response; transport errors become failures without one.
func (c *HTTPClient) Do(ctx context.Context, args RequestArgs) Result {
	if c == nil || c.http == nil {
		return FailErr(errors.New("http client is not configured"))
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(reqCtx, args)
	if err != nil {
		return FailErr(err)
	}

	c.logger.Debug("request", "method", req.Method, "url", req.URL.String())
	resp, err := c.http.Do(req)
	if err != nil {
		return FailErr(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailErr(fmt.Errorf("read body: %w", err))
	}

	out := Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Data:   decodeBody(resp.Header.Get("Content-Type"), body),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Fail(&Failure{Response: &out, Err: fmt.Errorf("%w %s", ErrStatus, resp.Status)})
	}
	return Ok(out)
}

func (c *HTTPClient) newRequest(ctx context.Context, args RequestArgs) (*http.Request, error) {
	target, err := c.resolveURL(args.URL)
	if err != nil {
		return nil, err
	}
	if len(args.Params) > 0 {
		query, err := encodeParams(target.Query(), args.Params)
		if err != nil {
			return nil, err
		}
		target.RawQuery = query
	}

	method := strings.ToUpper(strings.TrimSpace(args.Method))
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)
	switch data := args.Data.(type) {
	case nil:
	case string:
		body = strings.NewReader(data)
		contentType = "text/plain; charset=utf-8"
	default:
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *HTTPClient) resolveURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("request url is required")
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if c.baseURL == "" || ref.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(ref), nil
}

// encodeParams serializes params into the query string. Strings are sent as
// is; every other value is sent as JSON.
func encodeParams(existing url.Values, params map[string]any) (string, error) {
	values := url.Values{}
	for key, vals := range existing {
		values[key] = append([]string(nil), vals...)
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch value := params[key].(type) {
		case nil:
			continue
		case string:
			values.Set(key, value)
		default:
			payload, err := json.Marshal(value)
			if err != nil {
				return "", fmt.Errorf("encode param %q: %w", key, err)
			}
			values.Set(key, string(payload))
		}
	}
	return values.Encode(), nil
}

func decodeBody(contentType string, body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if strings.Contains(strings.ToLower(contentType), "json") {
		var out any
		if err := json.Unmarshal(trimmed, &out); err == nil {
			return out
		}
	}
	return string(body)
}
