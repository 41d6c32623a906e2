package rbac

import (
	"net/http"

	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// Require returns middleware that lets the request through only when the
// identity stored by middleware.Authenticate may perform action.
func Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var caller *auth.Identity
			if id, ok := auth.FromContext(r.Context()); ok {
				caller = &id
			}
			if err := Authorize(caller, action); err != nil {
				response.Fail(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
