package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper. It answers outgoing requests
// from the flow's mock steps instead of making network calls.
//
// Hand it to the client under test:
//
//	mt := testkit.NewMockTransport(flow)
//	client := httpclient.NewWithHTTPClient(&http.Client{Transport: mt}, 0)
//	// ... run requests ...
//	errs := mt.AssertAllCalled()
type MockTransport struct {
	mu      sync.Mutex
	steps   []httpMockEntry
	require bool
	bodies  [][]byte
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

// NewMockTransport builds a MockTransport from f's mocks.
func NewMockTransport(f *Flow) *MockTransport {
	mt := &MockTransport{require: f.MockRequired}
	for _, step := range f.Mocks {
		mt.steps = append(mt.steps, httpMockEntry{step: step})
	}
	return mt
}

// RoundTrip returns the response of the first matching mock step.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.bodies = append(mt.bodies, body)

	for i := range mt.steps {
		entry := &mt.steps[i]
		if !urlMatches(req, entry.step.MatchURL) {
			continue
		}
		entry.callCount++
		return buildHTTPResponse(req, entry.step), nil
	}

	if mt.require {
		return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s: no matching mock step", req.URL)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"error":"no mock configured"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Bodies returns the request bodies seen so far, in call order.
func (mt *MockTransport) Bodies() [][]byte {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([][]byte(nil), mt.bodies...)
}

// AssertAllCalled reports every mock step that was never triggered.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if e.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: mock step matchUrl=%q was never called", e.step.MatchURL))
		}
	}
	return errs
}

func urlMatches(req *http.Request, pattern string) bool {
	switch {
	case pattern == "":
		return true
	case strings.Contains(pattern, "://"):
		return strings.HasPrefix(req.URL.String(), pattern)
	default:
		return req.URL.Path == pattern
	}
}

func buildHTTPResponse(req *http.Request, step MockStep) *http.Response {
	code := step.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(step.Body)),
		Request:    req,
	}
}
