package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh handler whose outgoing HTTP calls go through rt.
type Factory func(rt http.RoundTripper) http.Handler

// RunDir discovers every *.json flow in dir and runs each as a subtest
// against its own handler.
func RunDir(t *testing.T, dir string, build Factory) {
	t.Helper()

	flows, err := LoadDir(dir)
	require.NoError(t, err)

	for _, f := range flows {
		t.Run(f.Name, func(t *testing.T) {
			RunFlow(t, f, build)
		})
	}
}

// Run loads a single flow file and runs it.
func Run(t *testing.T, path string, build Factory) {
	t.Helper()

	f, err := LoadFlow(path)
	require.NoError(t, err)
	t.Run(filepath.Base(path), func(t *testing.T) {
		RunFlow(t, f, build)
	})
}

// RunFlow executes f's steps in order and checks that every gateway mock
// was used.
func RunFlow(t *testing.T, f *Flow, build Factory) {
	t.Helper()

	mt := NewMockTransport(f)
	handler := build(mt)
	vars := map[string]string{}

	for _, step := range f.Steps {
		if !runStep(t, handler, step, vars) {
			return
		}
	}

	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err, "[%s]", f.Name)
	}
}

func runStep(t *testing.T, handler http.Handler, s Step, vars map[string]string) bool {
	t.Helper()

	var body io.Reader
	if len(s.Body) > 0 {
		body = strings.NewReader(expand(string(s.Body), vars))
	}

	req := httptest.NewRequest(strings.ToUpper(s.Method), expand(s.URL, vars), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v, vars))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !assert.Equal(t, s.ExpectedStatus, rec.Code, "[%s] status\nbody: %s", s.Name, rec.Body.String()) {
		return false
	}
	if len(s.Response) > 0 {
		if !AssertJSONSubset(t, s.Name, []byte(expand(string(s.Response), vars)), rec.Body.Bytes()) {
			return false
		}
	}
	return capture(t, s, rec.Body.Bytes(), vars)
}

func capture(t *testing.T, s Step, body []byte, vars map[string]string) bool {
	t.Helper()
	if len(s.Capture) == 0 {
		return true
	}

	var doc any
	if !assert.NoError(t, json.Unmarshal(body, &doc), "[%s] capture from non-JSON body", s.Name) {
		return false
	}
	for name, path := range s.Capture {
		v, ok := Lookup(doc, path)
		if !assert.True(t, ok, "[%s] capture %q: path %q not found in %s", s.Name, name, path, body) {
			return false
		}
		switch x := v.(type) {
		case string:
			vars[name] = x
		default:
			raw, _ := json.Marshal(x)
			vars[name] = string(raw)
		}
	}
	return true
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// expand replaces {{name}} with its captured value. Unknown names are left
// untouched so the failure shows up in the request.
func expand(s string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// Lookup walks a dotted path ("product._id", "products.0.name") through a
// decoded JSON document.
func Lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// DumpFlow writes a human-readable summary of f to w.
func DumpFlow(w io.Writer, f *Flow) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Flow: %s\n", f.Name)
	for i, s := range f.Steps {
		fmt.Fprintf(&b, "  [%d] %s %s → %d\n", i, s.Method, s.URL, s.ExpectedStatus)
	}
	for i, m := range f.Mocks {
		fmt.Fprintf(&b, "  mock[%d]: matchUrl=%q status=%d\n", i, m.MatchURL, m.StatusCode)
	}
	_, _ = w.Write(b.Bytes())
}
