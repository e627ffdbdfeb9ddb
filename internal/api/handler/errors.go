package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tilekeeper/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 16

// decode reads a JSON request body into v
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierr.NewTooLargeError(tooLarge.Limit)
		}
		return NewInvalidRequestError("Invalid request body")
	}
	return nil
}
