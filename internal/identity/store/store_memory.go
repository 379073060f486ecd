package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pulse/internal/identity/models"
	"pulse/pkg/platform/sentinel"
)

// InMemory is a map-backed user store for demos and unit tests. Uniqueness of
// id and email matches the postgres constraints.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *InMemory) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; ok {
		return sentinel.ErrConflict
	}
	if user.Email != "" {
		if _, ok := s.byEmail[strings.ToLower(user.Email)]; ok {
			return sentinel.ErrConflict
		}
	}

	u := *user
	s.byID[u.ID] = &u
	if u.Email != "" {
		s.byEmail[strings.ToLower(u.Email)] = &u
	}
	return nil
}

// CreateIfAbsent inserts the user unless the id already exists. Returns true
// when a row was inserted. This is the seeding primitive: repeated seeds are
// no-ops.
func (s *InMemory) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; ok {
		return false, nil
	}
	u := *user
	s.byID[u.ID] = &u
	if u.Email != "" {
		s.byEmail[strings.ToLower(u.Email)] = &u
	}
	return true, nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// FindByIDOrEmail resolves a user by id first, then by email. Signup uses it
// for the duplicate check.
func (s *InMemory) FindByIDOrEmail(ctx context.Context, idOrEmail string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byID[idOrEmail]; ok {
		copied := *u
		return &copied, nil
	}
	if u, ok := s.byEmail[strings.ToLower(idOrEmail)]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByIDs returns the users for the given ids; missing ids are simply absent
// from the result.
func (s *InMemory) FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			copied := *u
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *InMemory) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
