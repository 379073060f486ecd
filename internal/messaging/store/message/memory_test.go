package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pulse/internal/messaging/models"
	"pulse/internal/sentiment"
	"pulse/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *MemoryStoreSuite) seed(sender, receiver string, sentAt time.Time) *models.Message {
	msg := &models.Message{
		Content:    "hello",
		SenderID:   sender,
		ReceiverID: receiver,
		Sentiment:  sentiment.Neutral,
		SentAt:     sentAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, msg))
	return msg
}

func (s *MemoryStoreSuite) TestCreateAssignsMonotonicIDs() {
	now := time.Now()
	first := s.seed("user1", "user2", now)
	second := s.seed("user2", "user1", now)

	s.Equal(int64(1), first.ID)
	s.Equal(int64(2), second.ID)
}

func (s *MemoryStoreSuite) TestListBetweenReturnsBothDirections() {
	now := time.Now()
	s.seed("user1", "user2", now)
	s.seed("user2", "user1", now.Add(time.Second))
	s.seed("user1", "user3", now) // different pair, excluded

	msgs, err := s.store.ListBetween(s.ctx, "user1", "user2", 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("user1", msgs[0].SenderID)
	s.Equal("user2", msgs[1].SenderID)
}

func (s *MemoryStoreSuite) TestListBetweenOrdersByTimeThenID() {
	// Identical timestamps fall back to insertion order via the id.
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := s.seed("user1", "user2", at)
	second := s.seed("user2", "user1", at)

	msgs, err := s.store.ListBetween(s.ctx, "user2", "user1", 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal(first.ID, msgs[0].ID)
	s.Equal(second.ID, msgs[1].ID)
}

func (s *MemoryStoreSuite) TestListBetweenAfterID() {
	now := time.Now()
	s.seed("user1", "user2", now)
	s.seed("user1", "user2", now.Add(time.Second))
	third := s.seed("user2", "user1", now.Add(2*time.Second))

	msgs, err := s.store.ListBetween(s.ctx, "user1", "user2", 2)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal(third.ID, msgs[0].ID)
}

func (s *MemoryStoreSuite) TestMarkRead() {
	now := time.Now()
	msg := s.seed("user1", "user2", now)
	other := s.seed("user1", "user2", now)

	s.Require().NoError(s.store.MarkRead(s.ctx, []int64{msg.ID}))

	got, err := s.store.FindByID(s.ctx, msg.ID)
	s.Require().NoError(err)
	s.True(got.Read)

	untouched, err := s.store.FindByID(s.ctx, other.ID)
	s.Require().NoError(err)
	s.False(untouched.Read)
}

func (s *MemoryStoreSuite) TestMarkReadIgnoresUnknownIDs() {
	s.NoError(s.store.MarkRead(s.ctx, []int64{42}))
}

func (s *MemoryStoreSuite) TestFindByIDsSkipsMissing() {
	msg := s.seed("user1", "user2", time.Now())

	got, err := s.store.FindByIDs(s.ctx, []int64{msg.ID, 99})
	s.Require().NoError(err)
	s.Len(got, 1)
	s.Contains(got, msg.ID)
}

func (s *MemoryStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(s.ctx, 7)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestResultsAreCopies() {
	msg := s.seed("user1", "user2", time.Now())

	got, err := s.store.FindByID(s.ctx, msg.ID)
	s.Require().NoError(err)
	got.Content = "mutated"

	again, err := s.store.FindByID(s.ctx, msg.ID)
	s.Require().NoError(err)
	s.Equal("hello", again.Content)
}
