package schemaloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

func loadHTTP(ctx context.Context, client *http.Client, target string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		return nil, errors.New("schemaloader: http client is not configured")
	}
	if target == "" {
		return nil, errors.New("schemaloader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("schemaloader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func resolveURL(base, raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("schemaloader: parse url %q: %w", raw, err)
	}
	if ref.IsAbs() || base == "" {
		return ref.String(), nil
	}
	root, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("schemaloader: parse base url %q: %w", base, err)
	}
	return root.ResolveReference(ref).String(), nil
}
