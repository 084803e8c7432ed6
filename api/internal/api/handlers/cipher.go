package handlers

import (
	"net/http"

	"cryptvault/api/internal/core/domain"
	"cryptvault/api/internal/infrastructure/crypto"
)

type CipherEncryptRequest struct {
	Plaintext string `json:"plaintext"`
	Key       string `json:"key"`
	Algorithm string `json:"algorithm" validate:"required"`
}

type CipherDecryptRequest struct {
	Ciphertext string    `json:"ciphertext"`
	Key        string    `json:"key"`
	IV         crypto.IV `json:"iv"`
	Algorithm  string    `json:"algorithm" validate:"required"`
}

// CipherHandler exposes the engine without persistence.
type CipherHandler struct {
	engine domain.CipherEngine
}

func NewCipherHandler(engine domain.CipherEngine) *CipherHandler {
	return &CipherHandler{engine: engine}
}

// Algorithms handles GET /api/v1/algorithms
func (h *CipherHandler) Algorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, crypto.Algorithms())
}

// Encrypt handles POST /api/v1/cipher/encrypt
func (h *CipherHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req CipherEncryptRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	alg, err := crypto.ParseAlgorithm(req.Algorithm)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	result, err := h.engine.Encrypt([]byte(req.Plaintext), req.Key, alg)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Decrypt handles POST /api/v1/cipher/decrypt
func (h *CipherHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req CipherDecryptRequest
	if err := decodeJSON(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	alg, err := crypto.ParseAlgorithm(req.Algorithm)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	plaintext, err := h.engine.Decrypt(req.Ciphertext, req.Key, req.IV, alg)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plaintext": string(plaintext)})
}
