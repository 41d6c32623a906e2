package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
	"github.com/tradebridge/tradebridge/pkg/response"
)

// TokenVerifier turns a bearer token into the identity it binds.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header. A
// missing header, a non-Bearer scheme or an unparseable token is
// Unauthorized; a token that fails signature or expiry checks is
// InvalidToken. On success the identity is stored in the request context
// for auth.FromContext.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Fail(w, apperr.ErrUnauthorized)
				return
			}

			id, err := v.Verify(token)
			switch {
			case errors.Is(err, auth.ErrMalformedToken):
				response.Fail(w, apperr.ErrUnauthorized)
				return
			case err != nil:
				response.Fail(w, apperr.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
