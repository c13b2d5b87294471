package testsupport

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-deposit/pkg/transport"
)

// ScriptedClient is a transport.Client whose replies are scripted per
// method and URL. Replies are consumed in order; Hold returns a channel that
// resolves the matching call when a result is sent on it.
type ScriptedClient struct {
	mu       sync.Mutex
	queues   map[string][]func(ctx context.Context) transport.Result
	requests []transport.RequestArgs

	// Fallback answers calls with nothing scripted. Nil answers with an
	// empty 200 response.
	Fallback func(args transport.RequestArgs) transport.Result
}

var _ transport.Client = (*ScriptedClient)(nil)

// NewScriptedClient returns an empty script.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{queues: make(map[string][]func(context.Context) transport.Result)}
}

// Reply queues an immediate result for method and url.
func (c *ScriptedClient) Reply(method, url string, result transport.Result) *ScriptedClient {
	c.push(method, url, func(context.Context) transport.Result { return result })
	return c
}

// ReplyOK queues a 200 response carrying data.
func (c *ScriptedClient) ReplyOK(method, url string, data any) *ScriptedClient {
	return c.Reply(method, url, transport.Ok(transport.Response{Status: http.StatusOK, Data: data}))
}

// ReplyStatus queues a failure carrying a response with status and data.
func (c *ScriptedClient) ReplyStatus(method, url string, status int, data any) *ScriptedClient {
	resp := transport.Response{Status: status, Data: data}
	return c.Reply(method, url, transport.Fail(&transport.Failure{Response: &resp, Err: transport.ErrStatus}))
}

// Hold queues a call that blocks until a result is sent on the returned
// channel or the call context ends.
func (c *ScriptedClient) Hold(method, url string) chan<- transport.Result {
	gate := make(chan transport.Result, 1)
	c.push(method, url, func(ctx context.Context) transport.Result {
		select {
		case result := <-gate:
			return result
		case <-ctx.Done():
			return transport.FailErr(ctx.Err())
		}
	})
	return gate
}

// Do implements transport.Client.
func (c *ScriptedClient) Do(ctx context.Context, args transport.RequestArgs) transport.Result {
	key := scriptKey(args.Method, args.URL)

	c.mu.Lock()
	c.requests = append(c.requests, args.Clone())
	var next func(context.Context) transport.Result
	if queue := c.queues[key]; len(queue) > 0 {
		next = queue[0]
		c.queues[key] = queue[1:]
	}
	fallback := c.Fallback
	c.mu.Unlock()

	switch {
	case next != nil:
		return next(ctx)
	case fallback != nil:
		return fallback(args)
	default:
		return transport.Ok(transport.Response{Status: http.StatusOK})
	}
}

// Requests returns copies of every request received so far.
func (c *ScriptedClient) Requests() []transport.RequestArgs {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]transport.RequestArgs, 0, len(c.requests))
	for _, req := range c.requests {
		out = append(out, req.Clone())
	}
	return out
}

func (c *ScriptedClient) push(method, url string, fn func(context.Context) transport.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queues == nil {
		c.queues = make(map[string][]func(context.Context) transport.Result)
	}
	key := scriptKey(method, url)
	c.queues[key] = append(c.queues[key], fn)
}

func scriptKey(method, url string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(url)
}
