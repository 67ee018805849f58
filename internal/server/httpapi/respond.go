package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/statementkit/statementkit/internal/shared"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorCode maps a sentinel error to its wire code and HTTP status. The
// signup validation order is preserved upstream, so the first failing rule
// is the one reported here.
func errorCode(err error) (string, int) {
	switch {
	case errors.Is(err, shared.ErrMissingFields):
		return "missing_fields", http.StatusBadRequest
	case errors.Is(err, shared.ErrPasswordMismatch):
		return "password_mismatch", http.StatusBadRequest
	case errors.Is(err, shared.ErrPasswordTooShort):
		return "password_too_short", http.StatusBadRequest
	case errors.Is(err, shared.ErrEmailTaken):
		return "email_taken", http.StatusConflict
	case errors.Is(err, shared.ErrUserNotFound):
		return "user_not_found", http.StatusNotFound
	case errors.Is(err, shared.ErrWrongPassword):
		return "wrong_password", http.StatusUnauthorized
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidToken), errors.Is(err, shared.ErrTokenExpired):
		return "unauthorized", http.StatusUnauthorized
	case errors.Is(err, shared.ErrInsufficientCredits):
		return "insufficient_credits", http.StatusPaymentRequired
	case errors.Is(err, shared.ErrConversionInFlight):
		return "conversion_in_flight", http.StatusConflict
	case errors.Is(err, shared.ErrGuestQuota):
		return "guest_quota_exceeded", http.StatusForbidden
	case errors.Is(err, shared.ErrGuestPageLimit):
		return "guest_page_limit", http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return "not_found", http.StatusNotFound
	default:
		return "internal_error", http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	code, status := errorCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	respondJSON(w, status, errorResponse{Error: code, Message: msg})
}
