package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cryptvault/api/internal/core/domain"
	"cryptvault/api/internal/core/services"
)

type MessageService interface {
	Encrypt(ctx context.Context, ownerID uuid.UUID, in services.EncryptInput) (*services.EncryptedMessage, error)
	Decrypt(ctx context.Context, ownerID uuid.UUID, messageID int64, keyText string) (string, error)
	List(ctx context.Context, ownerID uuid.UUID, search string, page domain.Page) (*domain.MessagePage, error)
	Delete(ctx context.Context, ownerID uuid.UUID, messageID int64) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*domain.UserStats, error)
}

type EncryptRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
	// Optional; the engine generates one when empty. Ignored for RSA.
	Key       string `json:"key"`
	Algorithm string `json:"algorithm" validate:"required"`
}

type DecryptRequest struct {
	MessageID int64  `json:"message_id" validate:"required,gt=0"`
	Key       string `json:"key" validate:"required"`
}

type MessageHandler struct {
	service MessageService
}

func NewMessageHandler(service MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Encrypt handles POST /api/v1/encrypt. The response is the only time the
// generated key and IV are returned.
func (h *MessageHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req EncryptRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	stored, err := h.service.Encrypt(r.Context(), claims.Subject, services.EncryptInput{
		Title:     req.Title,
		Message:   req.Message,
		Key:       req.Key,
		Algorithm: req.Algorithm,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Decrypt handles POST /api/v1/decrypt
func (h *MessageHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req DecryptRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	plaintext, err := h.service.Decrypt(r.Context(), claims.Subject, req.MessageID, req.Key)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"decrypted_message": plaintext})
}

// List handles GET /api/v1/messages?page=&size=&search=
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page := domain.Page{Number: queryInt(q.Get("page"), 0), Size: queryInt(q.Get("size"), domain.DefaultPageSize)}

	result, err := h.service.List(r.Context(), claims.Subject, q.Get("search"), page)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/v1/messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid message ID format"})
		return
	}

	if err := h.service.Delete(r.Context(), claims.Subject, id); err != nil {
		HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/user/stats
func (h *MessageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), claims.Subject)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
