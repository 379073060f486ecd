package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"pulse/internal/messaging/models"
	"pulse/internal/sentiment"
	"pulse/pkg/platform/sentinel"
	txcontext "pulse/pkg/platform/tx"
)

// Postgres persists groups, memberships, and group messages in PostgreSQL.
// Membership is a relation table with a composite (group_id, user_id) primary
// key.
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

// Create inserts the group row and its member rows. Callers run this inside a
// transaction so the group never exists without its members.
func (s *Postgres) Create(ctx context.Context, g *models.Group) error {
	ex := s.execer(ctx)

	query := `
		INSERT INTO groups (name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := ex.QueryRowContext(ctx, query,
		g.Name, g.Description, g.CreatedBy, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	for _, memberID := range g.MemberIDs {
		if _, err := ex.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			g.ID, memberID,
		); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	ex := s.execer(ctx)

	var g models.Group
	err := ex.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at, updated_at FROM groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("select group: %w", err)
	}

	rows, err := ex.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY user_id`, id)
	if err != nil {
		return nil, fmt.Errorf("select group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		g.MemberIDs = append(g.MemberIDs, memberID)
	}
	return &g, rows.Err()
}

func (s *Postgres) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE groups SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch group: %w", err)
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

func (s *Postgres) ListByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	ex := s.execer(ctx)

	query := `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.updated_at DESC, g.id DESC
	`
	rows, err := ex.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select groups by member: %w", err)
	}
	defer rows.Close()

	var out []*models.Group
	var ids []int64
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, &g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// One query for all member sets instead of one per group.
	memberRows, err := ex.QueryContext(ctx,
		`SELECT group_id, user_id FROM group_members WHERE group_id = ANY($1) ORDER BY user_id`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select member sets: %w", err)
	}
	defer memberRows.Close()

	byID := make(map[int64]*models.Group, len(out))
	for _, g := range out {
		byID[g.ID] = g
	}
	for memberRows.Next() {
		var groupID int64
		var memberID string
		if err := memberRows.Scan(&groupID, &memberID); err != nil {
			return nil, fmt.Errorf("scan member set: %w", err)
		}
		if g, ok := byID[groupID]; ok {
			g.MemberIDs = append(g.MemberIDs, memberID)
		}
	}
	return out, memberRows.Err()
}

func (s *Postgres) CreateMessage(ctx context.Context, msg *models.GroupMessage) error {
	query := `
		INSERT INTO group_messages (content, sender_id, group_id, sentiment, sentiment_score, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		msg.Content, msg.SenderID, msg.GroupID,
		string(msg.Sentiment), msg.SentimentScore, msg.SentAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert group message: %w", err)
	}
	return nil
}

func (s *Postgres) ListMessages(ctx context.Context, groupID, afterID int64) ([]*models.GroupMessage, error) {
	query := `
		SELECT id, content, sender_id, group_id, sentiment, sentiment_score, sent_at
		FROM group_messages
		WHERE group_id = $1 AND id > $2
		ORDER BY sent_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, groupID, afterID)
	if err != nil {
		return nil, fmt.Errorf("select group messages: %w", err)
	}
	defer rows.Close()

	var out []*models.GroupMessage
	for rows.Next() {
		var m models.GroupMessage
		var label string
		if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.GroupID, &label, &m.SentimentScore, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan group message: %w", err)
		}
		m.Sentiment = sentiment.Label(label)
		out = append(out, &m)
	}
	return out, rows.Err()
}
