// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	dErrors "podium/pkg/domain-errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into its HTTP status and body.
// Internal errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = messageOf(err)
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// BoundedInt parses an optional integer query value and checks it lies in
// [lo, hi]. Empty input yields def.
func BoundedInt(raw, name string, def, lo, hi int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}
