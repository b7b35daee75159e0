package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error envelope every failing endpoint returns.
// Detail carries internal error text and is only populated when the service
// runs with the development flag set.
type ErrorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks a response as uncacheable. Required for anything carrying
// tokens or credentials.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorBody{Message: message})
}

// ErrorDetail writes the standard envelope including internal detail. Callers
// are responsible for only passing detail in development mode.
func ErrorDetail(w http.ResponseWriter, code int, message, detail string) {
	WriteJSON(w, code, ErrorBody{Message: message, Detail: detail})
}
