// Package httpx provides HTTP response utilities for the envelope contract
// used by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body. ErrorMessage is the empty string on
// success and carries the failure text otherwise.
type Envelope struct {
	Message      string `json:"Message"`
	ErrorMessage string `json:"ErrorMessage"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail sends a bare envelope carrying a failure message.
func Fail(w http.ResponseWriter, status int, message, errorMessage string) {
	JSON(w, status, Envelope{Message: message, ErrorMessage: errorMessage})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
