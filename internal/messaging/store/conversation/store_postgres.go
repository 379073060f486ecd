package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pulse/internal/messaging/models"
	"pulse/pkg/platform/sentinel"
	txcontext "pulse/pkg/platform/tx"
)

// Postgres persists conversations in PostgreSQL. Pair uniqueness is enforced
// by a unique index over (LEAST(user1_id, user2_id), GREATEST(...)), so two
// concurrent creates for the same pair cannot both land regardless of
// orientation; the loser sees ErrConflict and retries its lookup.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) executor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const convColumns = `id, user1_id, user2_id, COALESCE(last_message_id, 0), created_at, updated_at`

// Create inserts the pair's row. A lost race against a concurrent creator is
// absorbed with ON CONFLICT DO NOTHING rather than raised as a unique
// violation, which would abort the surrounding transaction and poison every
// later statement in it. The loser gets ErrConflict and retries its lookup on
// the same, still-usable transaction.
func (s *Postgres) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (user1_id, user2_id, last_message_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5)
		ON CONFLICT ((LEAST(user1_id, user2_id)), (GREATEST(user1_id, user2_id))) DO NOTHING
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		conv.User1ID, conv.User2ID, conv.LastMessageID, conv.CreatedAt, conv.UpdatedAt,
	).Scan(&conv.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (s *Postgres) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	// The stored orientation is arbitrary, so check both orderings.
	query := `
		SELECT ` + convColumns + `
		FROM conversations
		WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)
	`
	conv, err := scanConversation(s.execer(ctx).QueryRowContext(ctx, query, a, b))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return conv, nil
}

func (s *Postgres) SetLastMessage(ctx context.Context, id, messageID int64, at time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE conversations SET last_message_id = $2, updated_at = $3 WHERE id = $1`,
		id, messageID, at)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := `
		SELECT ` + convColumns + `
		FROM conversations
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.LastMessageID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.LastMessageID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
