package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	outhttp "github.com/shashiranjanraj/storefront/pkg/http"
)

// Runner executes scenarios against Handler.
type Runner struct {
	Handler http.Handler
	Vars    map[string]string

	// Before runs ahead of every scenario, e.g. to reset fixtures.
	Before func(t *testing.T, s *Scenario)
}

// RunDir runs every scenario in dir as a subtest.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()
	scenarios, err := LoadDir(dir)
	if err != nil {
		t.Errorf("testkit: %v", err)
	}
	for _, s := range scenarios {
		s := s
		t.Run(s.Name, func(t *testing.T) { r.Run(t, s) })
	}
}

// Run executes one scenario.
func (r *Runner) Run(t *testing.T, s *Scenario) {
	t.Helper()
	if r.Before != nil {
		r.Before(t, s)
	}

	mt := NewMockTransport(s)
	prev := outhttp.DefaultClient.Transport
	outhttp.DefaultClient.Transport = mt
	defer func() { outhttp.DefaultClient.Transport = prev }()

	mails := NewMailRecorder()
	defer mails.Install()()

	rec, err := r.fire(s)
	if err != nil {
		t.Fatalf("[%s] %v", s.Name, err)
	}

	assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] status code\nbody: %s", s.Name, rec.Body.String())

	expected, err := s.ExpectedResponse(r.Vars)
	if err != nil {
		t.Fatalf("[%s] expected response: %v", s.Name, err)
	}
	if expected != nil {
		AssertJSONSubset(t, expected, rec.Body.Bytes())
	}

	for _, err := range mt.Uncalled() {
		t.Errorf("[%s] %v", s.Name, err)
	}
	for _, m := range s.Mocks {
		if m.Kind != KindMail {
			continue
		}
		got := mails.Count(m.Match)
		if m.Times != nil {
			assert.Equal(t, *m.Times, got, "[%s] mails with subject %q", s.Name, m.Match)
		} else {
			assert.Positive(t, got, "[%s] expected a mail with subject %q", s.Name, m.Match)
		}
	}
}

func (r *Runner) fire(s *Scenario) (*httptest.ResponseRecorder, error) {
	body, err := s.RequestBody(r.Vars)
	if err != nil {
		return nil, fmt.Errorf("request body: %w", err)
	}
	url, err := expand(s.URL, r.Vars)
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(s.Method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		val, err := expand(v, r.Vars)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", k, err)
		}
		req.Header.Set(k, val)
	}

	rec := httptest.NewRecorder()
	r.Handler.ServeHTTP(rec, req)
	return rec, nil
}
