package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"pulse/internal/messaging/models"
	"pulse/internal/sentiment"
	"pulse/pkg/platform/sentinel"
	txcontext "pulse/pkg/platform/tx"
)

// Postgres persists direct messages in PostgreSQL. The store is pure I/O;
// ordering and read-state rules live in the queries, policy lives in the
// service.
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

func (s *Postgres) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (content, sender_id, receiver_id, sentiment, sentiment_score, sent_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		msg.Content, msg.SenderID, msg.ReceiverID,
		string(msg.Sentiment), msg.SentimentScore, msg.SentAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

const messageColumns = `id, content, sender_id, receiver_id, sentiment, sentiment_score, sent_at, read`

func (s *Postgres) ListBetween(ctx context.Context, userA, userB string, afterID int64) ([]*models.Message, error) {
	// Tiebreak on id: sub-second timestamp collisions must not reorder.
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND id > $3
		ORDER BY sent_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, userA, userB, afterID)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkRead(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

func (s *Postgres) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Message, error) {
	if len(ids) == 0 {
		return map[int64]*models.Message{}, nil
	}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ANY($1)`
	rows, err := s.execer(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select messages by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*models.Message, len(ids))
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	var m models.Message
	var label string
	err := s.execer(ctx).QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Content, &m.SenderID, &m.ReceiverID, &label, &m.SentimentScore, &m.SentAt, &m.Read)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select message: %w", err)
	}
	m.Sentiment = sentiment.Label(label)
	return &m, nil
}

func scanMessage(rows *sql.Rows) (*models.Message, error) {
	var m models.Message
	var label string
	if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.ReceiverID, &label, &m.SentimentScore, &m.SentAt, &m.Read); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	m.Sentiment = sentiment.Label(label)
	return &m, nil
}
