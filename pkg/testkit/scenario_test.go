package testkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/tradebridge/pkg/testkit"
)

// echoHandler issues a ticket, then redeems it by calling an upstream
// through the client it was built with.
func echoHandler(client *http.Client) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /issue", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"ticket": "t-42", "who": in["who"]})
	})
	mux.HandleFunc("GET /redeem/{ticket}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("ticket") != "t-42" || r.Header.Get("X-Ticket") != "t-42" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp, err := client.Get("https://upstream.test/v1/ping")
		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		var up any
		_ = json.NewDecoder(resp.Body).Decode(&up)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "upstream": up})
	})
	return mux
}

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, "testdata", func(rt http.RoundTripper) http.Handler {
		return echoHandler(&http.Client{Transport: rt})
	})
}

func TestLoadFlowDefaults(t *testing.T) {
	f, err := testkit.LoadFlow("testdata/echo_flow.json")
	require.NoError(t, err)

	assert.Equal(t, "echo flow", f.Name)
	require.Len(t, f.Steps, 2)
	assert.Equal(t, "GET", f.Steps[1].Method)
	assert.Equal(t, 201, f.Steps[0].ExpectedStatus)
	require.Len(t, f.Mocks, 1)

	var out strings.Builder
	testkit.DumpFlow(&out, f)
	assert.Contains(t, out.String(), "POST /issue → 201")
}

func TestMockTransportMatching(t *testing.T) {
	f := &testkit.Flow{
		MockRequired: true,
		Mocks: []testkit.MockStep{
			{MatchURL: "https://api.example.com/", Body: json.RawMessage(`{"ok":true}`)},
		},
	}
	mt := testkit.NewMockTransport(f)

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodPost, "https://api.example.com/users", strings.NewReader("hi")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, mt.AssertAllCalled())
	assert.Equal(t, [][]byte{[]byte("hi")}, mt.Bodies())

	_, err = mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://unexpected.com/api", nil))
	assert.Error(t, err)
}

func TestMockTransportReportsUnused(t *testing.T) {
	mt := testkit.NewMockTransport(&testkit.Flow{Mocks: []testkit.MockStep{{MatchURL: "/v1/orders"}}})
	assert.Len(t, mt.AssertAllCalled(), 1)

	resp, err := mt.RoundTrip(httptest.NewRequest(http.MethodGet, "https://x.test/other", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDiffJSON(t *testing.T) {
	var exp, act any
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":{"c":"<any>"},"d":[1,2]}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":{"c":"x","e":2},"d":[1,2],"z":0}`), &act))
	assert.Empty(t, testkit.DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"a":2,"d":[1]}`), &act))
	diffs := testkit.DiffJSON("", exp, act)
	assert.Len(t, diffs, 3)
}

func TestLookup(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"products":[{"_id":"p1"}]}`), &doc))

	v, ok := testkit.Lookup(doc, "products.0._id")
	assert.True(t, ok)
	assert.Equal(t, "p1", v)

	_, ok = testkit.Lookup(doc, "products.3._id")
	assert.False(t, ok)
}
