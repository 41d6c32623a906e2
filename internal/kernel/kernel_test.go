package kernel_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/internal/kernel"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/httpclient"
	"github.com/tradebridge/tradebridge/pkg/payment"
	"github.com/tradebridge/tradebridge/pkg/storage"
)

// gatewayStub records the charge requests it receives.
type gatewayStub struct {
	mu       sync.Mutex
	requests []payment.ChargeRequest
}

func (g *gatewayStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req payment.ChargeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"id":"order_test","amount":`+jsonInt(req.Amount)+`,"currency":"INR","status":"created"}`)
}

func (g *gatewayStub) calls() []payment.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.ChargeRequest(nil), g.requests...)
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	gateway *gatewayStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	gw := &gatewayStub{}
	gwSrv := httptest.NewServer(gw)
	t.Cleanup(gwSrv.Close)

	disk, err := storage.NewLocalDisk(t.TempDir(), "/storage")
	require.NoError(t, err)

	mem := repositories.NewMemory()
	h := kernel.Handler(kernel.Deps{
		Users:    mem.Users(),
		Products: mem.Products(),
		Orders:   mem.Orders(),
		Issuer:   auth.NewIssuer("e2e-secret", time.Hour),
		Gateway: payment.NewRazorpay(config.PaymentConfig{
			KeyID: "rzp_test_key", KeySecret: "shh", BaseURL: gwSrv.URL, Currency: "INR",
		}, httpclient.New(5*time.Second)),
		Disk: disk,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, gateway: gw}
}

func (h *harness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.send(req)
}

func (h *harness) send(req *http.Request) (int, map[string]any) {
	h.t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// signupLogin registers an account and returns its token.
func (h *harness) signupLogin(name, email, role string) string {
	h.t.Helper()
	status, body := h.do(http.MethodPost, "/api/signup", "", map[string]any{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(h.t, http.StatusCreated, status, body)

	status, body = h.do(http.MethodPost, "/api/login", "", map[string]any{"email": email, "password": "secret123"})
	require.Equal(h.t, http.StatusOK, status, body)
	return body["token"].(string)
}

func TestWholesalerScenario(t *testing.T) {
	h := newHarness(t)
	token := h.signupLogin("Acme", "acme@x.com", "wholesaler")

	status, body := h.do(http.MethodPost, "/api/products", token, map[string]any{"name": "Widget", "price": 10})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["success"])
	created := body["product"].(map[string]any)

	status, body = h.do(http.MethodGet, "/api/products/my", token, nil)
	require.Equal(t, http.StatusOK, status)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	mine := products[0].(map[string]any)
	assert.Equal(t, created["_id"], mine["_id"])
	assert.Equal(t, "Widget", mine["name"])
	assert.Equal(t, 10.0, mine["price"])
}

func TestSignupResponsesNeverContainPassword(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/signup", bytes.NewReader([]byte(
		`{"name":"Acme","email":"acme@x.com","password":"secret123","role":"wholesaler"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "secret123")

	_, body := h.do(http.MethodGet, "/api/wholesalers", "", nil)
	list := body["wholesalers"].([]any)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].(map[string]any), "password")
}

func TestDuplicateSignup(t *testing.T) {
	h := newHarness(t)
	h.signupLogin("Acme", "acme@x.com", "wholesaler")

	status, body := h.do(http.MethodPost, "/api/signup", "", map[string]any{
		"name": "Again", "email": "acme@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already registered", body["message"])
}

func TestLoginFailuresMatch(t *testing.T) {
	h := newHarness(t)
	h.signupLogin("Acme", "acme@x.com", "wholesaler")

	s1, b1 := h.do(http.MethodPost, "/api/login", "", map[string]any{"email": "acme@x.com", "password": "wrong"})
	s2, b2 := h.do(http.MethodPost, "/api/login", "", map[string]any{"email": "ghost@x.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, b1, b2)
}

func TestRetailerCannotCreateProduct(t *testing.T) {
	h := newHarness(t)
	token := h.signupLogin("Shop", "shop@x.com", "retailer")

	status, body := h.do(http.MethodPost, "/api/products", token, map[string]any{"name": "Widget", "price": 10})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, false, body["success"])

	_, body = h.do(http.MethodGet, "/api/products", "", nil)
	assert.Empty(t, body["products"])
}

func TestForeignProductIsForbidden(t *testing.T) {
	h := newHarness(t)
	a := h.signupLogin("A", "a@x.com", "wholesaler")
	b := h.signupLogin("B", "b@x.com", "wholesaler")

	_, body := h.do(http.MethodPost, "/api/products", b, map[string]any{"name": "Gadget", "price": 5})
	id := body["product"].(map[string]any)["_id"].(string)

	status, _ := h.do(http.MethodPut, "/api/products/"+id, a, map[string]any{"name": "Stolen"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.do(http.MethodDelete, "/api/products/"+id, a, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Missing products answer the same way.
	status, _ = h.do(http.MethodDelete, "/api/products/000000000000000000000000", a, nil)
	assert.Equal(t, http.StatusForbidden, status)

	_, body = h.do(http.MethodGet, "/api/products/my", b, nil)
	p := body["products"].([]any)[0].(map[string]any)
	assert.Equal(t, "Gadget", p["name"])

	status, body = h.do(http.MethodPut, "/api/products/"+id, b, map[string]any{"price": 6})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 6.0, body["product"].(map[string]any)["price"])

	status, body = h.do(http.MethodDelete, "/api/products/"+id, b, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestForeignProductUpdateIsForbiddenWhateverTheBody(t *testing.T) {
	h := newHarness(t)
	a := h.signupLogin("A", "a@x.com", "wholesaler")
	b := h.signupLogin("B", "b@x.com", "wholesaler")

	_, body := h.do(http.MethodPost, "/api/products", b, map[string]any{"name": "Gadget", "price": 5})
	id := body["product"].(map[string]any)["_id"].(string)

	status, body := h.do(http.MethodPut, "/api/products/"+id, a, map[string]any{"price": -1})
	assert.Equal(t, http.StatusForbidden, status, body)

	status, body = h.do(http.MethodPut, "/api/products/"+id, a, nil)
	assert.Equal(t, http.StatusForbidden, status, body)

	status, _ = h.do(http.MethodPut, "/api/products/000000000000000000000000", a, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The owner still gets the input errors.
	status, body = h.do(http.MethodPut, "/api/products/"+id, b, map[string]any{"price": -1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "price")

	status, _ = h.do(http.MethodPut, "/api/products/"+id, b, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	token := h.signupLogin("Acme", "acme@x.com", "wholesaler")
	for _, p := range []map[string]any{
		{"name": "Red Widget", "price": 1},
		{"name": "Bolt", "category": "Widgets", "price": 2},
		{"name": "Apple", "category": "fruit", "price": 3},
	} {
		status, _ := h.do(http.MethodPost, "/api/products", token, p)
		require.Equal(t, http.StatusCreated, status)
	}

	_, body := h.do(http.MethodGet, "/api/products?search=widget", "", nil)
	products := body["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "Bolt", products[0].(map[string]any)["name"])
	assert.Equal(t, "Red Widget", products[1].(map[string]any)["name"])
}

func TestAnonymousOrder(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/orders", "", map[string]any{
		"productName": "Widget", "price": 10, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, status, body)
	order := body["order"].(map[string]any)
	assert.Equal(t, "Pending", order["paymentStatus"])
	assert.Equal(t, "Processing", order["status"])

	status, _ = h.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := h.signupLogin("Shop", "shop@x.com", "retailer")
	status, body = h.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	id := order["_id"].(string)
	status, body = h.do(http.MethodPut, "/api/orders/"+id, token, map[string]any{"paymentStatus": "Paid"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Paid", body["order"].(map[string]any)["paymentStatus"])
}

func TestCreateOrderRoundsAmount(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/create-order", "", map[string]any{"amount": 499.6})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "order_test", body["id"])
	assert.NotContains(t, body, "success")

	calls := h.gateway.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(500), calls[0].Amount)
	assert.Equal(t, "INR", calls[0].Currency)

	status, _ = h.do(http.MethodPost, "/api/create-order", "", map[string]any{"amount": -1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, h.gateway.calls(), 1)

	status, body = h.do(http.MethodPost, "/api/create-order", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "amount")
	assert.Len(t, h.gateway.calls(), 1)
}

func TestRazorpayKey(t *testing.T) {
	h := newHarness(t)
	status, body := h.do(http.MethodGet, "/api/get-razorpay-key", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rzp_test_key", body["key"])
}

func TestTokenErrors(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["message"])

	forged, err := auth.NewIssuer("other-secret", time.Hour).Issue(auth.Identity{UserID: "x", Role: auth.RoleAdmin})
	require.NoError(t, err)
	status, body = h.do(http.MethodGet, "/api/users/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestProfileAndPasswordChange(t *testing.T) {
	h := newHarness(t)
	token := h.signupLogin("Shop", "shop@x.com", "retailer")

	status, body := h.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "shop@x.com", body["user"].(map[string]any)["email"])

	status, _ = h.do(http.MethodPut, "/api/users/me/password", token, map[string]any{
		"currentPassword": "secret123", "newPassword": "evenbetter",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = h.do(http.MethodPost, "/api/login", "", map[string]any{"email": "shop@x.com", "password": "evenbetter"})
	assert.Equal(t, http.StatusOK, status)
}

func TestSignupNormalizesPaddedEmail(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/signup", "", map[string]any{
		"name": "Pad", "email": " Padded@Example.com ", "password": "secret123", "role": "retailer",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "padded@example.com", body["user"].(map[string]any)["email"])

	status, _ = h.do(http.MethodPost, "/api/login", "", map[string]any{"email": "padded@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, status)
}

func TestValidationErrorsCarryFields(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/signup", "", map[string]any{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "name")

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/login", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	status, _ = h.send(req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInvalidWholesalerIDIsBadRequest(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodGet, "/api/products/wholesaler/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

var png1x1 = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func upload(t *testing.T, h *harness, token string, data []byte) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "pic.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/uploads/images", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return h.send(req)
}

func TestImageUpload(t *testing.T) {
	h := newHarness(t)
	wholesaler := h.signupLogin("Acme", "acme@x.com", "wholesaler")
	retailer := h.signupLogin("Shop", "shop@x.com", "retailer")

	status, body := upload(t, h, wholesaler, png1x1)
	require.Equal(t, http.StatusCreated, status, body)
	path := body["path"].(string)
	assert.Equal(t, "/storage/"+path, body["url"])

	resp, err := http.Get(h.srv.URL + "/storage/" + path)
	require.NoError(t, err)
	served, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, png1x1, served)

	status, _ = upload(t, h, retailer, png1x1)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = upload(t, h, wholesaler, []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	h := newHarness(t)
	status, body := h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/wholesalers", "", nil)

	resp, err := http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "tradebridge_http_requests_total")
}

func TestRouteTable(t *testing.T) {
	r := kernel.Router(kernel.Deps{})
	seen := map[string]bool{}
	for _, ri := range r.Routes() {
		seen[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /api/signup",
		"POST /api/login",
		"GET /api/wholesalers",
		"GET /api/users/me",
		"PUT /api/users/me/password",
		"GET /api/products/wholesaler/{id}",
		"GET /api/products/my",
		"POST /api/products",
		"GET /api/products",
		"PUT /api/products/{id}",
		"DELETE /api/products/{id}",
		"POST /api/uploads/images",
		"POST /api/orders",
		"GET /api/orders",
		"PUT /api/orders/{id}",
		"POST /api/create-order",
		"GET /api/get-razorpay-key",
		"GET /metrics",
	} {
		assert.True(t, seen[want], want)
	}
}
