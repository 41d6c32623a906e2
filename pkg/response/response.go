// Package response writes the JSON envelopes of the API.
//
// Success bodies are flat objects with "success": true next to the payload
// keys; failures are {"success": false, "message": ..., "errors": ...}.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/tradebridge/tradebridge/pkg/apperr"
)

// H is a shorthand for a JSON object body.
type H map[string]any

type failure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success writes body with "success": true added.
func Success(w http.ResponseWriter, status int, body H) {
	out := make(H, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out["success"] = true
	JSON(w, status, out)
}

// OK sends a 200 success envelope.
func OK(w http.ResponseWriter, body H) { Success(w, http.StatusOK, body) }

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, body H) { Success(w, http.StatusCreated, body) }

// Fail maps err to its status code and writes the failure envelope.
// Internal errors are answered generically; logging them with the request
// id is left to the caller, which holds the request.
func Fail(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	JSON(w, e.Kind.Status(), failure{Message: e.Message, Errors: e.Fields})
}

// Error sends a failure envelope with an explicit status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, failure{Message: message})
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) { Fail(w, apperr.ErrNotFound) }
