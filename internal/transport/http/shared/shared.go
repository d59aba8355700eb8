// Package shared holds the JSON envelope helpers every handler uses, so error
// translation happens in exactly one place.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "tradegate/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the JSON error envelope. Unknown
// errors map to a generic 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := dErrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   string(code),
		Message: message,
	})
}

// Decode parses a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
