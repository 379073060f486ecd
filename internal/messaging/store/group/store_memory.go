package group

import (
	"context"
	"sort"
	"sync"
	"time"

	"pulse/internal/messaging/models"
	"pulse/pkg/platform/sentinel"
)

// InMemory stores groups, their member sets, and group messages. The group is
// the aggregate root for its messages, which keeps one lock around membership
// checks and message writes.
type InMemory struct {
	mu        sync.RWMutex
	nextGroup int64
	nextMsg   int64
	groups    map[int64]*models.Group
	messages  map[int64]*models.GroupMessage
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextGroup: 1,
		nextMsg:   1,
		groups:    make(map[int64]*models.Group),
		messages:  make(map[int64]*models.GroupMessage),
	}
}

// Create persists the group with its member set and assigns its id.
func (s *InMemory) Create(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGroup
	s.nextGroup++
	copied := *g
	copied.MemberIDs = append([]string(nil), g.MemberIDs...)
	s.groups[copied.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *g
	copied.MemberIDs = append([]string(nil), g.MemberIDs...)
	return &copied, nil
}

// Touch bumps the group's updated_at, moving it up the unified chat list.
func (s *InMemory) Touch(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	g.UpdatedAt = at
	return nil
}

// ListByMember returns the groups the user belongs to, ordered by updated_at
// descending.
func (s *InMemory) ListByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Group
	for _, g := range s.groups {
		if g.IsMember(userID) {
			copied := *g
			copied.MemberIDs = append([]string(nil), g.MemberIDs...)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// CreateMessage persists a group message and assigns its id.
func (s *InMemory) CreateMessage(ctx context.Context, msg *models.GroupMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[msg.GroupID]; !ok {
		return sentinel.ErrNotFound
	}
	msg.ID = s.nextMsg
	s.nextMsg++
	copied := *msg
	s.messages[copied.ID] = &copied
	return nil
}

// ListMessages returns the group's messages ordered by send time with id as
// the tiebreaker, restricted to id > afterID when afterID > 0.
func (s *InMemory) ListMessages(ctx context.Context, groupID, afterID int64) ([]*models.GroupMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.GroupMessage
	for _, m := range s.messages {
		if m.GroupID == groupID && m.ID > afterID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out, nil
}
