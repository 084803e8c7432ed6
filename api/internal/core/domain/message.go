package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"cryptvault/api/internal/infrastructure/crypto"
)

// Message is a stored ciphertext together with everything needed to decrypt
// it except, for callers who did not keep it, the key.
type Message struct {
	ID         int64          `json:"id" db:"id"`
	Title      string         `json:"title" db:"title"`
	Ciphertext string         `json:"encrypted_content" db:"ciphertext"`
	Algorithm  string         `json:"algorithm" db:"algorithm"`
	Key        string         `json:"-" db:"encrypted_key"`
	IV         sql.NullString `json:"-" db:"initialization_vector"`
	OwnerID    uuid.UUID      `json:"-" db:"owner_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// InitializationVector lifts the nullable column into the engine's optional IV.
func (m *Message) InitializationVector() crypto.IV {
	if !m.IV.Valid {
		return crypto.NoIV()
	}
	return crypto.SomeIV(m.IV.String)
}

// Page is a zero-based page request.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int { return p.Number * p.Size }

// MessagePage is one page of an owner's messages, newest first.
type MessagePage struct {
	Items      []Message `json:"content"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalItems int       `json:"total_elements"`
	TotalPages int       `json:"total_pages"`
}

// MessageRepository persists messages. It does not check ownership on
// GetByID or Delete; the service does.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, search string, page Page) ([]Message, int, error)
	Delete(ctx context.Context, id int64) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
