package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pulse/internal/identity/store"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/requestcontext"
)

type IdentityServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	s.svc = New(store.NewInMemory(), nil)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("derives id from email local-part", func() {
		user, err := s.svc.Register(s.ctx, "Jane", "Doe", "Jane.Doe@example.com")
		s.Require().NoError(err)
		s.Equal("jane_doe", user.ID)
		s.Equal("Jane Doe", user.DisplayName())
		s.Contains(user.AvatarURL, "Jane+Doe")
	})

	s.Run("rejects missing first name or email", func() {
		_, err := s.svc.Register(s.ctx, "", "", "x@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.svc.Register(s.ctx, "Jane", "", "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects duplicate email with conflict", func() {
		_, err := s.svc.Register(s.ctx, "Other", "Person", "jane.doe@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("a user with this email already exists", dErrors.MessageOf(err))
	})

	s.Run("rejects a colliding derived id with conflict", func() {
		// Different email, same local part, so the derived id is taken.
		_, err := s.svc.Register(s.ctx, "Jane", "Impostor", "jane.doe@corp.example")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("a user with this id already exists", dErrors.MessageOf(err))
	})
}

func (s *IdentityServiceSuite) TestSeedDemoUsersIsIdempotent() {
	seeded, err := s.svc.SeedDemoUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, seeded)

	seeded, err = s.svc.SeedDemoUsers(s.ctx)
	s.Require().NoError(err)
	s.Zero(seeded, "repeated seeding must not insert again")

	alice, err := s.svc.GetUser(s.ctx, "user1")
	s.Require().NoError(err)
	s.Equal("Alice Johnson", alice.DisplayName())
}

func (s *IdentityServiceSuite) TestGetUserNotFound() {
	_, err := s.svc.GetUser(s.ctx, "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *IdentityServiceSuite) TestExists() {
	_, err := s.svc.SeedDemoUsers(s.ctx)
	s.Require().NoError(err)

	ok, err := s.svc.Exists(s.ctx, "user1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.svc.Exists(s.ctx, "ghost")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *IdentityServiceSuite) TestListOthersExcludesViewer() {
	_, err := s.svc.SeedDemoUsers(s.ctx)
	s.Require().NoError(err)

	users, err := s.svc.ListOthers(s.ctx, "user2")
	s.Require().NoError(err)
	s.Len(users, 2)
	for _, u := range users {
		s.NotEqual("user2", u.ID)
	}
}
