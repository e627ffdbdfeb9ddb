package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/tilekeeper/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeEmptyPlacement   = "EMPTY_PLACEMENT"
	CodeBadDirection     = "BAD_DIRECTION"
	CodeOutOfBounds      = "OUT_OF_BOUNDS"
	CodeLetterConflict   = "LETTER_CONFLICT"
	CodeMustCoverCenter  = "MUST_COVER_CENTER"
	CodeDisconnected     = "DISCONNECTED"
	CodeNotInLine        = "NOT_IN_LINE"
	CodeNotContiguous    = "NOT_CONTIGUOUS"
	CodeCellOccupied     = "CELL_OCCUPIED"
	CodeInvalidLetter    = "INVALID_LETTER"
	CodeNoNewTiles       = "NO_NEW_TILES"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeArchiveNotFound  = "ARCHIVE_NOT_FOUND"
	CodeUnknownLanguage  = "UNKNOWN_LANGUAGE"
	CodeNothingToArchive = "NOTHING_TO_ARCHIVE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeTooLarge         = "REQUEST_TOO_LARGE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// placementErrors are rule violations; the message carries the offending
// position so it is passed through
var placementErrors = []struct {
	err  error
	code string
}{
	{model.ErrEmptyPlacement, CodeEmptyPlacement},
	{model.ErrOutOfBounds, CodeOutOfBounds},
	{model.ErrLetterConflict, CodeLetterConflict},
	{model.ErrMustCoverCenter, CodeMustCoverCenter},
	{model.ErrDisconnected, CodeDisconnected},
	{model.ErrNotInLine, CodeNotInLine},
	{model.ErrNotContiguous, CodeNotContiguous},
	{model.ErrCellOccupied, CodeCellOccupied},
	{model.ErrNoNewTiles, CodeNoNewTiles},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, pe := range placementErrors {
		if errors.Is(err, pe.err) {
			return &httpError{http.StatusUnprocessableEntity, APIError{pe.code, err.Error()}}
		}
	}

	switch {
	case errors.Is(err, model.ErrBadDirection):
		return &httpError{http.StatusBadRequest, APIError{CodeBadDirection, "Direction must be horizontal or vertical"}}
	case errors.Is(err, model.ErrInvalidLetter):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidLetter, err.Error()}}
	case errors.Is(err, model.ErrUnknownLanguage):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownLanguage, err.Error()}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrArchiveNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeArchiveNotFound, "Archived game not found"}}
	case errors.Is(err, model.ErrNothingToArchive):
		return &httpError{http.StatusConflict, APIError{CodeNothingToArchive, "Game has no plays to archive"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Missing or invalid table key"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewTooLargeError creates a request body too large error
func NewTooLargeError(limit int64) error {
	return &httpError{http.StatusRequestEntityTooLarge, APIError{CodeTooLarge, fmt.Sprintf("Request body exceeds %d bytes", limit)}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Table key required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
