// Package bind decodes an HTTP request body into a struct. Validation is
// left to the services, which decide access before judging the input.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tradebridge/tradebridge/pkg/apperr"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 4 << 20

var maxBodyBytes = DefaultMaxBodyBytes

// SetMaxBodyBytes sets the body size limit used by JSON. Non-positive
// values restore the default. Call once at startup.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = DefaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// JSON decodes r.Body as JSON into dest. Malformed and oversized bodies
// come back as apperr validation errors.
func JSON(r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid(fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit))
		}
		return apperr.Wrap(apperr.KindValidation, "Invalid JSON body", err)
	}
	return nil
}
