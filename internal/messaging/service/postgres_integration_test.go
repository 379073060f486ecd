//go:build integration

package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "pulse/internal/identity/models"
	identityservice "pulse/internal/identity/service"
	identitystore "pulse/internal/identity/store"
	"pulse/internal/messaging/service"
	conversationstore "pulse/internal/messaging/store/conversation"
	groupstore "pulse/internal/messaging/store/group"
	messagestore "pulse/internal/messaging/store/message"
	platformpg "pulse/internal/platform/postgres"
	"pulse/internal/sentiment"
	"pulse/pkg/requestcontext"
	"pulse/pkg/testutil/containers"
)

type ServiceIntegrationSuite struct {
	suite.Suite
	postgres      *containers.PostgresContainer
	svc           *service.Service
	conversations *conversationstore.Postgres
	users         *identitystore.Postgres
}

func TestServiceIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ServiceIntegrationSuite))
}

func (s *ServiceIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())

	s.conversations = conversationstore.NewPostgres(s.postgres.DB)
	s.users = identitystore.NewPostgres(s.postgres.DB)

	lexicon, err := sentiment.Default()
	s.Require().NoError(err)

	s.svc = service.New(
		messagestore.NewPostgres(s.postgres.DB),
		s.conversations,
		groupstore.NewPostgres(s.postgres.DB),
		identityservice.New(s.users, nil),
		lexicon,
		platformpg.NewTxRunner(s.postgres.DB),
		nil,
	)
}

func (s *ServiceIntegrationSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"group_messages", "group_members", "groups", "conversations", "messages", "users")
	s.Require().NoError(err)

	now := time.Now().UTC()
	for _, id := range []string{"user1", "user2"} {
		s.Require().NoError(s.users.Create(ctx, &identitymodels.User{
			ID: id, Email: id + "@example.com", CreatedAt: now, UpdatedAt: now,
		}))
	}
}

func (s *ServiceIntegrationSuite) as(userID string) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	return requestcontext.WithTime(ctx, time.Now().UTC().Truncate(time.Microsecond))
}

// TestConcurrentFirstSendsConvergeOnOneConversation drives the full send path
// from both sides of a pair at once, so the losers of the conversation insert
// race hit the conflict-retry inside an open transaction. Every send must
// succeed and all of them must land on a single conversation row.
func (s *ServiceIntegrationSuite) TestConcurrentFirstSendsConvergeOnOneConversation() {
	const senders = 16

	var wg sync.WaitGroup
	errs := make([]error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := "user1", "user2"
			if i%2 == 1 {
				from, to = to, from
			}
			_, err := s.svc.SendMessage(s.as(from), to, fmt.Sprintf("hello %d", i))
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		s.Require().NoError(err, "send %d", i)
	}

	conversations, err := s.conversations.ListByUser(context.Background(), "user1")
	s.Require().NoError(err)
	s.Require().Len(conversations, 1)
	s.NotZero(conversations[0].LastMessageID)

	messages, err := s.svc.GetMessages(s.as("user1"), "user2", 0)
	s.Require().NoError(err)
	s.Len(messages, senders)
}
