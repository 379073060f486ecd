package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	identitymetrics "pulse/internal/identity/metrics"
	"pulse/internal/identity/models"
	"pulse/internal/identity/store"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/email"
	"pulse/pkg/platform/sentinel"
	"pulse/pkg/requestcontext"
)

// UserStore is the persistence port for identities.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDOrEmail(ctx context.Context, idOrEmail string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Service orchestrates identity lookups, signup, and demo seeding.
type Service struct {
	users   UserStore
	metrics *identitymetrics.Metrics
}

func New(users UserStore, metrics *identitymetrics.Metrics) *Service {
	return &Service{users: users, metrics: metrics}
}

// GetUser resolves a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// GetUsers resolves many users at once; missing ids are absent from the result.
// The messaging core uses this for explicit display-name joins.
func (s *Service) GetUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load users")
	}
	return users, nil
}

// Exists reports whether a user id resolves. The identity middleware uses it.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve user %q: %w", id, err)
	}
	return true, nil
}

// ListOthers returns all users except the viewer, for the contact picker.
func (s *Service) ListOthers(ctx context.Context, viewerID string) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	out := users[:0]
	for _, u := range users {
		if u.ID != viewerID {
			out = append(out, u)
		}
	}
	return out, nil
}

// Register creates a user from signup input. The id is derived from the email
// local-part; a duplicate id or email is a conflict.
func (s *Service) Register(ctx context.Context, firstName, lastName, emailAddr string) (*models.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	emailAddr = strings.TrimSpace(emailAddr)

	if firstName == "" || emailAddr == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first name and email are required")
	}

	id := email.DeriveUserID(emailAddr)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is not usable as an identifier")
	}

	// Explicit duplicate check first, for a precise message. The unique
	// constraints still backstop a concurrent signup racing past it.
	if err := s.checkAvailable(ctx, emailAddr, "a user with this email already exists"); err != nil {
		return nil, err
	}
	if err := s.checkAvailable(ctx, id, "a user with this id already exists"); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:        id,
		Email:     emailAddr,
		FirstName: firstName,
		LastName:  lastName,
		AvatarURL: avatarURL(strings.TrimSpace(firstName + " " + lastName)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersCreated()
	return user, nil
}

// checkAvailable fails with a conflict when a user already holds the given id
// or email.
func (s *Service) checkAvailable(ctx context.Context, idOrEmail, taken string) error {
	_, err := s.users.FindByIDOrEmail(ctx, idOrEmail)
	if err == nil {
		return dErrors.New(dErrors.CodeConflict, taken)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for an existing user")
	}
	return nil
}

// SeedDemoUsers inserts the demo fixture users whose ids are absent. Safe to
// call on every startup.
func (s *Service) SeedDemoUsers(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)
	seeded := 0
	for _, u := range store.DemoUsers() {
		u.CreatedAt = now
		u.UpdatedAt = now
		inserted, err := s.users.CreateIfAbsent(ctx, u)
		if err != nil {
			return seeded, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed demo users")
		}
		if inserted {
			seeded++
		}
	}
	s.metrics.AddUsersSeeded(seeded)
	return seeded, nil
}

func avatarURL(displayName string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(displayName) + "&background=random&color=fff"
}
