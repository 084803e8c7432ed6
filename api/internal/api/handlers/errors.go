package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"cryptvault/api/internal/core/domain"
	"cryptvault/api/internal/core/services"
	"cryptvault/api/internal/infrastructure/crypto"
)

var validate = validator.New()

type errorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// HandleError maps service and engine errors onto HTTP status codes.
// Unexpected errors are logged and never echoed to the client.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErrs validator.ValidationErrors
		maxBytesErr    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: describeValidation(validationErrs)})
	case errors.Is(err, services.ErrPasswordTooLong):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, errInvalidPayload):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid JSON payload"})
	case crypto.KindOf(err) != 0:
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error(), Kind: crypto.KindOf(err).String()})
	case errors.As(err, &maxBytesErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Message: "Request body too large"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Resource not found"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "Access denied"})
	case errors.Is(err, domain.ErrAccountSuspended):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "Account suspended"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "Username or email already registered"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"})
	case errors.Is(err, services.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Session expired, please log in again"})
	default:
		slog.ErrorContext(r.Context(), "unhandled request error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
}

func describeValidation(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "max", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), tagVerb(fe.Tag()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func tagVerb(tag string) string {
	if tag == "max" {
		return "at most"
	}
	return "at least"
}

// decodeJSON reads and validates a request payload.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return errInvalidPayload
	}
	return validate.Struct(dst)
}

var errInvalidPayload = errors.New("invalid JSON payload")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func claimsOrUnauthorized(w http.ResponseWriter, r *http.Request) (*domain.UserClaims, bool) {
	claims, ok := domain.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
	}
	return claims, ok
}
