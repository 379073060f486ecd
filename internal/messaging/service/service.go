package service

import (
	"context"
	"time"

	identity "pulse/internal/identity/models"
	"pulse/internal/messaging/metrics"
	"pulse/internal/messaging/models"
)

// MessageStore persists direct messages.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListBetween(ctx context.Context, userA, userB string, afterID int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, ids []int64) error
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Message, error)
}

// ConversationStore persists the one-row-per-pair conversation index.
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	FindByPair(ctx context.Context, a, b string) (*models.Conversation, error)
	SetLastMessage(ctx context.Context, id, messageID int64, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*models.Conversation, error)
}

// GroupStore persists groups, their member sets, and group messages.
type GroupStore interface {
	Create(ctx context.Context, g *models.Group) error
	FindByID(ctx context.Context, id int64) (*models.Group, error)
	Touch(ctx context.Context, id int64, at time.Time) error
	ListByMember(ctx context.Context, userID string) ([]*models.Group, error)
	CreateMessage(ctx context.Context, msg *models.GroupMessage) error
	ListMessages(ctx context.Context, groupID, afterID int64) ([]*models.GroupMessage, error)
}

// UserDirectory resolves user profiles for participant checks and name joins.
// The identity service satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*identity.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]*identity.User, error)
}

// Service implements messaging: direct messages with read receipts, groups,
// and the unified chat list. Every message is labeled by the analyzer before
// it is stored.
type Service struct {
	messages      MessageStore
	conversations ConversationStore
	groups        GroupStore
	users         UserDirectory
	analyzer      Analyzer
	tx            StoreTx
	metrics       *metrics.Metrics
}

func New(
	messages MessageStore,
	conversations ConversationStore,
	groups GroupStore,
	users UserDirectory,
	analyzer Analyzer,
	tx StoreTx,
	m *metrics.Metrics,
) *Service {
	return &Service{
		messages:      messages,
		conversations: conversations,
		groups:        groups,
		users:         users,
		analyzer:      analyzer,
		tx:            tx,
		metrics:       m,
	}
}

func participantView(u *identity.User) *models.ParticipantView {
	if u == nil {
		return nil
	}
	return &models.ParticipantView{
		ID:        u.ID,
		Name:      u.DisplayName(),
		AvatarURL: u.AvatarURL,
	}
}

// displayName tolerates missing directory entries so a deleted sender does
// not break history rendering.
func displayName(users map[string]*identity.User, id string) string {
	if u, ok := users[id]; ok {
		return u.DisplayName()
	}
	return id
}
