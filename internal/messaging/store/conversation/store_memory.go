package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"pulse/internal/messaging/models"
	"pulse/pkg/platform/sentinel"
)

// InMemory keeps one conversation row per unordered user pair. A canonical
// pair index enforces the same uniqueness the postgres unordered-pair index
// provides, while the stored row keeps whatever orientation it was created
// with.
type InMemory struct {
	mu        sync.RWMutex
	nextID    int64
	byID      map[int64]*models.Conversation
	pairIndex map[pairKey]int64
}

type pairKey struct{ lo, hi string }

func canonical(a, b string) pairKey {
	if a <= b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID:    1,
		byID:      make(map[int64]*models.Conversation),
		pairIndex: make(map[pairKey]int64),
	}
}

// Create inserts a row for the pair, preserving the given orientation.
// Returns ErrConflict when a row for the unordered pair already exists in
// either orientation; callers are expected to retry their lookup.
func (s *InMemory) Create(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := canonical(conv.User1ID, conv.User2ID)
	if _, ok := s.pairIndex[key]; ok {
		return sentinel.ErrConflict
	}

	conv.ID = s.nextID
	s.nextID++
	copied := *conv
	s.byID[copied.ID] = &copied
	s.pairIndex[key] = copied.ID
	return nil
}

// FindByPair resolves the conversation for the unordered pair {a, b},
// whichever orientation it was stored with.
func (s *InMemory) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairIndex[canonical(a, b)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

// SetLastMessage points the conversation at its newest message and bumps
// updated_at.
func (s *InMemory) SetLastMessage(ctx context.Context, id, messageID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	conv.LastMessageID = messageID
	conv.UpdatedAt = at
	return nil
}

// ListByUser returns the user's conversations ordered by updated_at
// descending.
func (s *InMemory) ListByUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Conversation
	for _, c := range s.byID {
		if c.Involves(userID) {
			copied := *c
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
