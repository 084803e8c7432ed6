package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

// UserContextKey carries *UserClaims on authenticated requests.
const UserContextKey contextKey = "user_claims"

// User is an account that owns messages.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserClaims is the verified identity extracted from an access token.
type UserClaims struct {
	Subject  uuid.UUID
	Username string
	Email    string
}

// ClaimsFromContext returns the caller's identity, if the request was authenticated.
func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	c, ok := ctx.Value(UserContextKey).(*UserClaims)
	return c, ok
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(ctx context.Context, login string) (*User, error)
}

// UserStats backs GET /user/stats.
type UserStats struct {
	TotalMessages int64 `json:"total_messages"`
	User          *User `json:"user"`
}
