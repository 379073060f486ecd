package message

import (
	"context"
	"sort"
	"sync"

	"pulse/internal/messaging/models"
	"pulse/pkg/platform/sentinel"
)

// InMemory is a slice-backed direct-message store for demos and unit tests.
// IDs are monotonic, so ordering by (SentAt, ID) is stable the same way the
// bigserial column makes it stable in postgres.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.Message
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1, byID: make(map[int64]*models.Message)}
}

// Create persists the message and assigns its id.
func (s *InMemory) Create(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	s.nextID++
	copied := *msg
	s.byID[copied.ID] = &copied
	return nil
}

// ListBetween returns the messages exchanged between the two users (either
// direction), ordered by send time with id as the tiebreaker, restricted to
// id > afterID when afterID > 0.
func (s *InMemory) ListBetween(ctx context.Context, userA, userB string, afterID int64) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Message
	for _, m := range s.byID {
		if m.ID <= afterID {
			continue
		}
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
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

// MarkRead flips the read flag on the given message ids. The flag never
// transitions back.
func (s *InMemory) MarkRead(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if m, ok := s.byID[id]; ok {
			m.Read = true
		}
	}
	return nil
}

// FindByIDs returns the messages for the given ids; missing ids are absent
// from the result. Conversation listings use it to join last-message rows.
func (s *InMemory) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]*models.Message, len(ids))
	for _, id := range ids {
		if m, ok := s.byID[id]; ok {
			copied := *m
			out[id] = &copied
		}
	}
	return out, nil
}

// FindByID returns a single message.
func (s *InMemory) FindByID(ctx context.Context, id int64) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *m
	return &copied, nil
}
