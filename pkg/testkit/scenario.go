// Package testkit runs JSON-described API flows against an http.Handler.
//
// A flow file holds an ordered list of steps sharing one handler, so a
// later step can use what an earlier one returned:
//
//	{
//	  "name": "wholesaler creates a product",
//	  "gatewayMocks": [{"matchUrl": "/v1/orders", "statusCode": 200, "body": {"id": "order_1"}}],
//	  "steps": [
//	    {"name": "login", "method": "POST", "url": "/api/login",
//	     "body": {"email": "a@x.com", "password": "secret1"},
//	     "expectedStatus": 200, "capture": {"token": "token"}},
//	    {"name": "create", "method": "POST", "url": "/api/products",
//	     "headers": {"Authorization": "Bearer {{token}}"},
//	     "body": {"name": "Widget", "price": 10},
//	     "expectedStatus": 201, "response": {"success": true, "product": {"name": "Widget"}}}
//	  ]
//	}
//
// "response" is matched as a subset of the actual body; the string "<any>"
// matches any present value. "capture" maps a variable to a dotted path in
// the response body; {{name}} placeholders in urls, headers and bodies are
// replaced with captured values.
//
// Example _test.go:
//
//	func TestFlows(t *testing.T) {
//	    testkit.RunDir(t, "testdata/flows", func(rt http.RoundTripper) http.Handler {
//	        return kernel.Handler(depsUsing(rt))
//	    })
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Flow is an ordered list of requests loaded from one JSON file.
type Flow struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []Step     `json:"steps"`
	Mocks       []MockStep `json:"gatewayMocks"`

	// MockRequired fails outgoing calls that match no mock.
	MockRequired bool `json:"mockRequired"`
}

// Step is one request and the assertions on its response.
type Step struct {
	Name           string            `json:"name"`
	Method         string            `json:"method"`
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers"`
	Body           json.RawMessage   `json:"body"`
	ExpectedStatus int               `json:"expectedStatus"`
	Response       json.RawMessage   `json:"response"`
	Capture        map[string]string `json:"capture"`
}

// MockStep describes one intercepted outgoing HTTP call.
type MockStep struct {
	// MatchURL is matched against the path of the outgoing request, or as
	// a prefix of the full URL when it carries a scheme. Empty matches any
	// request.
	MatchURL   string          `json:"matchUrl"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// LoadFlow reads and validates a flow from a JSON file.
func LoadFlow(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid flow %q: %w", path, err)
	}
	return &f, nil
}

func (f *Flow) validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.URL == "" {
			return fmt.Errorf("steps[%d].url is required", i)
		}
		if s.ExpectedStatus == 0 {
			return fmt.Errorf("steps[%d].expectedStatus is required", i)
		}
		if s.Method == "" {
			s.Method = "GET"
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s %s", s.Method, s.URL)
		}
	}
	return nil
}

// LoadDir loads every *.json file in dir as a Flow, in name order.
func LoadDir(dir string) ([]*Flow, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("testkit: no flow files found in %q", dir)
	}

	flows := make([]*Flow, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFlow(p)
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, nil
}
