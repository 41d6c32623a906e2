// Package ctx provides a request context for TradeBridge handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding, the caller
// identity and the JSON envelopes:
//
//	func (pc *ProductController) Update(c *ctx.Context) {
//	    var in services.ProductUpdateInput
//	    if !c.BindJSON(&in) {
//	        return // response already sent
//	    }
//	    p, err := pc.catalog.Update(c.Context(), c.Identity(), c.Param("id"), in)
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.OK(response.H{"product": p})
//	}
//
//	router.Put("/products/{id}", "products.update", ctx.Wrap(pc.Update))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/bind"
	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns the authenticated caller, or nil for anonymous requests.
func (c *Context) Identity() *auth.Identity {
	id, ok := auth.FromContext(c.R.Context())
	if !ok {
		return nil
	}
	return &id
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// ─── Binding ──────────────────────────────────────────────────────────────────

// DecodeJSON decodes the JSON body into dest without responding, for
// handlers that must settle access before reporting a bad body.
func (c *Context) DecodeJSON(dest any) error { return bind.JSON(c.R, dest) }

// BindJSON decodes the JSON body into dest. On failure it sends the 400
// response itself and returns false. Field validation belongs to the
// service that consumes dest.
func (c *Context) BindJSON(dest any) bool {
	if err := c.DecodeJSON(dest); err != nil {
		c.Fail(err)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	response.JSON(c.W, code, v)
}

// Success writes body with "success": true added.
func (c *Context) Success(code int, body response.H) {
	response.Success(c.W, code, body)
}

// OK sends a 200 success envelope.
func (c *Context) OK(body response.H) { c.Success(http.StatusOK, body) }

// Created sends a 201 success envelope.
func (c *Context) Created(body response.H) { c.Success(http.StatusCreated, body) }

// Fail maps err to a status and writes the failure envelope. Server-side
// failures are logged with the request id.
func (c *Context) Fail(err error) {
	if kind := apperr.KindOf(err); kind.Status() >= http.StatusInternalServerError {
		c.Logger().Error("request failed", "kind", kind.String(), "error", err)
	}
	response.Fail(c.W, err)
}
