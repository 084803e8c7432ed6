package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cryptvault/api/internal/api/middleware"
	"cryptvault/api/internal/core/domain"
	"cryptvault/api/internal/core/services"
)

const (
	refreshCookieName = "cryptvault_refresh_token"
	refreshCookiePath = "/api/v1/auth/refresh"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	// Username or email
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthHandler struct {
	service    AuthService
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
}

// NewAuthHandler wires the auth endpoints. secure controls the cookie Secure
// flag and is off only for plain-HTTP local development.
func NewAuthHandler(service AuthService, accessTTL, refreshTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{service: service, accessTTL: accessTTL, refreshTTL: refreshTTL, secure: secure}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh. Browsers send the refresh
// cookie; other clients post the token in the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	} else {
		var req RefreshRequest
		if err := decodeJSON(r, &req); err != nil {
			HandleError(w, r, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "No refresh token provided"})
		return
	}

	pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		// If the refresh token is expired or tampered with, clear the dead cookies
		h.clearCookies(w)
		HandleError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}
	user, err := h.service.Profile(r.Context(), claims.Subject)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.accessTTL.Seconds()),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath, // only sent to the refresh endpoint
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.refreshTTL.Seconds()),
	})
}

func (h *AuthHandler) clearCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: middleware.AccessCookieName, Path: "/", HttpOnly: true, MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: refreshCookieName, Path: refreshCookiePath, HttpOnly: true, MaxAge: -1})
}
