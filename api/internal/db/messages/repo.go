// Package messages stores encrypted messages through database/sql. The same
// queries run against Postgres (pgx stdlib driver) in production and SQLite
// in tests; placeholders are rebound per driver.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cryptvault/api/internal/core/domain"
)

const columns = `id, title, ciphertext, algorithm, encrypted_key, initialization_vector, owner_id, created_at`

type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts msg and writes the generated id back into it.
func (r *Repo) Create(ctx context.Context, msg *domain.Message) error {
	query := r.db.Rebind(`
		INSERT INTO messages (title, ciphertext, algorithm, encrypted_key, initialization_vector, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		msg.Title, msg.Ciphertext, msg.Algorithm, msg.Key, msg.IV, msg.OwnerID, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var msg domain.Message
	query := r.db.Rebind(`SELECT ` + columns + ` FROM messages WHERE id = ?`)

	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	return &msg, nil
}

// ListByOwner returns one page, newest first, and the total match count.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID, search string, page domain.Page) ([]domain.Message, int, error) {
	page = page.Normalize()

	where := `owner_id = ?`
	args := []any{ownerID}
	if s := strings.TrimSpace(search); s != "" {
		where += ` AND LOWER(title) LIKE LOWER(?) ESCAPE '\'`
		args = append(args, "%"+escapeLike(s)+"%")
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM messages WHERE ` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	items := []domain.Message{}
	if total == 0 {
		return items, 0, nil
	}

	listQuery := r.db.Rebind(`SELECT ` + columns + ` FROM messages WHERE ` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`)
	args = append(args, page.Size, page.Offset())
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return items, total, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM messages WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	query := r.db.Rebind(`SELECT COUNT(*) FROM messages WHERE owner_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
