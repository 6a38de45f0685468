// Package testkit drives black-box HTTP tests from JSON scenario files and
// provides the in-memory database used by service tests.
//
// A scenario describes one request and what must come back:
//
//	{
//	  "name": "checkout with empty cart",
//	  "method": "POST",
//	  "url": "/api/order",
//	  "headers": {"Authorization": "Bearer {{.UserToken}}"},
//	  "body": {"deliveryType": "pickup"},
//	  "expectedCode": 400,
//	  "response": {"message": "cart is empty"},
//	  "mocks": [{"kind": "mail", "match": "Order confirmation", "times": 0}]
//	}
//
// "response" is a subset match: every key it names must equal the actual
// value, extra keys in the actual body are ignored. {{.Name}} placeholders
// in url, headers and body are filled from Runner.Vars.
package testkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

type Scenario struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Method       string            `json:"method"`
	URL          string            `json:"url"`
	Headers      map[string]string `json:"headers"`
	Body         json.RawMessage   `json:"body"`
	RawBody      string            `json:"rawBody"`
	RequestFile  string            `json:"requestFile"`
	ExpectedCode int               `json:"expectedCode"`
	Response     json.RawMessage   `json:"response"`
	ResponseFile string            `json:"responseFile"`
	Mocks        []MockStep        `json:"mocks"`

	// Strict fails the scenario on any outgoing HTTP call without a mock.
	Strict bool `json:"strict"`

	dir string
}

// Mock kinds.
const (
	KindHTTP = "http"
	KindMail = "mail"
)

// MockStep is one intercepted side effect.
//
// For "http" steps, Match is a URL prefix and Status/Body form the canned
// response. For "mail" steps, Match is a subject prefix and Times is the
// number of matching messages that must be sent (nil means at least one).
type MockStep struct {
	Kind   string          `json:"kind"`
	Match  string          `json:"match"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
	Times  *int            `json:"times"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	s.dir = filepath.Dir(abs)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// LoadDir loads every *.json scenario in dir, sorted by file name. Files
// ending in _req.json or _res.json are request/response fixtures, not
// scenarios.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []*Scenario
	var errs []error
	for _, p := range paths {
		if strings.HasSuffix(p, "_req.json") || strings.HasSuffix(p, "_res.json") {
			continue
		}
		s, err := LoadScenario(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 && len(errs) == 0 {
		return nil, fmt.Errorf("testkit: no scenarios in %q", dir)
	}
	return out, errors.Join(errs...)
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return errors.New("url is required")
	}
	if s.ExpectedCode == 0 {
		return errors.New("expectedCode is required")
	}
	if s.Method == "" {
		s.Method = "GET"
	}
	s.Method = strings.ToUpper(s.Method)
	for i, m := range s.Mocks {
		if m.Kind != KindHTTP && m.Kind != KindMail {
			return fmt.Errorf("mocks[%d].kind must be %q or %q", i, KindHTTP, KindMail)
		}
	}
	return nil
}

// RequestBody returns the request payload with placeholders expanded.
func (s *Scenario) RequestBody(vars map[string]string) ([]byte, error) {
	var raw []byte
	switch {
	case s.RequestFile != "":
		b, err := os.ReadFile(s.resolve(s.RequestFile))
		if err != nil {
			return nil, err
		}
		raw = b
	case s.RawBody != "":
		raw = []byte(s.RawBody)
	case len(s.Body) > 0:
		raw = s.Body
	default:
		return nil, nil
	}
	out, err := expand(string(raw), vars)
	return []byte(out), err
}

// ExpectedResponse returns the expected body subset, or nil.
func (s *Scenario) ExpectedResponse(vars map[string]string) ([]byte, error) {
	var raw []byte
	switch {
	case s.ResponseFile != "":
		b, err := os.ReadFile(s.resolve(s.ResponseFile))
		if err != nil {
			return nil, err
		}
		raw = b
	case len(s.Response) > 0:
		raw = s.Response
	default:
		return nil, nil
	}
	out, err := expand(string(raw), vars)
	return []byte(out), err
}

func (s *Scenario) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

func expand(text string, vars map[string]string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
