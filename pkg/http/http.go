// Package http is the outgoing HTTP client shared by the Paystack client and
// the Slack notification channel.
//
//	resp, err := http.Post(base+"/transaction/initialize").
//	    Bearer(secret).
//	    Body(payload).
//	    Retry(2, 300*time.Millisecond).
//	    Send(ctx)
//	if err := resp.Throw(); err != nil { ... }
//
// Every request goes through DefaultClient, so tests intercept all outgoing
// traffic by swapping DefaultClient.Transport (see pkg/testkit).
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

var DefaultClient = &gohttp.Client{Transport: defaultTransport}

// ResetTransport restores the production transport on DefaultClient.
func ResetTransport() { DefaultClient.Transport = defaultTransport }

type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }
func Put(url string) *Request  { return newRequest(gohttp.MethodPut, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   15 * time.Second,
		attempts:  1,
		retryWait: 250 * time.Millisecond,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the payload. Strings and byte slices are sent raw; anything else
// is JSON encoded.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the initial backoff, which
// doubles per attempt. Only transport errors and 5xx responses are retried.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

// Send executes the request.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	var (
		resp *Response
		err  error
	)
	wait := r.retryWait
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err = r.do(ctx)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt == r.attempts {
			break
		}
		logger.WithCtx(ctx).Warn("http: retrying request",
			"method", r.method, "url", r.url, "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("http: %s %s: %w", r.method, r.url, err)
	}
	return resp, nil
}

func (r *Request) do(ctx context.Context) (*Response, error) {
	body, contentType, err := r.encode()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Headers: res.Header, Raw: raw}, nil
}

func (r *Request) encode() (io.Reader, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

func (r *Response) Text() string { return string(r.Raw) }

// Throw returns an error for any non-2xx response.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: status %d: %s", r.StatusCode, truncate(r.Raw, 512))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
