package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport answers outgoing requests from the scenario's http steps.
// Install it on pkg/http.DefaultClient; the runner does this automatically.
type MockTransport struct {
	mu     sync.Mutex
	steps  []*httpStep
	strict bool
}

type httpStep struct {
	MockStep
	calls int
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{strict: s.Strict}
	for _, m := range s.Mocks {
		if m.Kind == KindHTTP {
			mt.steps = append(mt.steps, &httpStep{MockStep: m})
		}
	}
	return mt
}

// RoundTrip returns the first step whose Match prefixes the request URL.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	url := req.URL.String()
	for _, st := range mt.steps {
		if st.Match != "" && !strings.HasPrefix(url, st.Match) {
			continue
		}
		st.calls++
		code := st.Status
		if code == 0 {
			code = http.StatusOK
		}
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     header,
			Body:       io.NopCloser(bytes.NewReader(st.Body)),
			Request:    req,
		}, nil
	}

	if mt.strict {
		return nil, fmt.Errorf("testkit: unmocked outgoing call to %s", url)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Request:    req,
	}, nil
}

// Uncalled returns an error for every step that was never hit.
func (mt *MockTransport) Uncalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var errs []error
	for _, st := range mt.steps {
		if st.calls == 0 {
			errs = append(errs, fmt.Errorf("http mock %q was never called", st.Match))
		}
	}
	return errs
}
