package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	identityservice "pulse/internal/identity/service"
	identitystore "pulse/internal/identity/store"
	"pulse/internal/messaging/models"
	"pulse/internal/messaging/service/mocks"
	conversationstore "pulse/internal/messaging/store/conversation"
	groupstore "pulse/internal/messaging/store/group"
	messagestore "pulse/internal/messaging/store/message"
	"pulse/internal/sentiment"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/platform/sentinel"
	"pulse/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	now      time.Time
	analyzer *mocks.MockAnalyzer
	svc      *Service

	messages      *messagestore.InMemory
	conversations *conversationstore.InMemory
	groups        *groupstore.InMemory
	users         *identityservice.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.analyzer = mocks.NewMockAnalyzer(ctrl)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.messages = messagestore.NewInMemory()
	s.conversations = conversationstore.NewInMemory()
	s.groups = groupstore.NewInMemory()

	s.users = identityservice.New(identitystore.NewInMemory(), nil)
	_, err := s.users.SeedDemoUsers(s.as("system"))
	s.Require().NoError(err)

	s.svc = New(s.messages, s.conversations, s.groups, s.users, s.analyzer, NewMemoryTx(), nil)
}

// as builds a request context for the given user at the suite's current clock.
func (s *ServiceSuite) as(userID string) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	return requestcontext.WithTime(ctx, s.now)
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *ServiceSuite) send(from, to, content string, score float64) {
	s.T().Helper()
	s.analyzer.EXPECT().Analyze(content).Return(score)
	_, err := s.svc.SendMessage(s.as(from), to, content)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSendMessageLabelsAndStores() {
	s.analyzer.EXPECT().Analyze("great work").Return(0.6)

	view, err := s.svc.SendMessage(s.as("user1"), "user2", "great work")
	s.Require().NoError(err)
	s.Equal(sentiment.Positive, view.Sentiment)
	s.InDelta(0.6, view.SentimentScore, 1e-9)
	s.Equal("Alice Johnson", view.SenderName)
	s.Equal("Bob Smith", view.ReceiverName)
	s.False(view.Read)
	s.Equal(s.now, view.Timestamp)
}

func (s *ServiceSuite) TestSendMessageTrimsContent() {
	s.analyzer.EXPECT().Analyze("hello").Return(0.0)

	view, err := s.svc.SendMessage(s.as("user1"), "user2", "  hello  ")
	s.Require().NoError(err)
	s.Equal("hello", view.Content)
	s.Equal(sentiment.Neutral, view.Sentiment)
}

func (s *ServiceSuite) TestSendMessageValidation() {
	_, err := s.svc.SendMessage(s.as("user1"), "user2", "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.SendMessage(s.as("user1"), "nobody", "hi")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSendMessageToSelf() {
	s.analyzer.EXPECT().Analyze("note to self").Return(0.0)

	view, err := s.svc.SendMessage(s.as("user1"), "user1", "note to self")
	s.Require().NoError(err)
	s.Equal("user1", view.SenderID)
	s.Equal("user1", view.ReceiverID)

	convs, err := s.conversations.ListByUser(context.Background(), "user1")
	s.Require().NoError(err)
	s.Len(convs, 1)
}

// contestedConversations simulates losing the conversation insert race: the
// first lookup misses, the insert lands the winner's row (opposite
// orientation) and reports a conflict, and every later call must keep working
// on the same unit of work.
type contestedConversations struct {
	*conversationstore.InMemory
	lookups int
}

func (c *contestedConversations) FindByPair(ctx context.Context, a, b string) (*models.Conversation, error) {
	c.lookups++
	if c.lookups == 1 {
		return nil, sentinel.ErrNotFound
	}
	return c.InMemory.FindByPair(ctx, a, b)
}

func (c *contestedConversations) Create(ctx context.Context, conv *models.Conversation) error {
	winner := &models.Conversation{
		User1ID:   conv.User2ID,
		User2ID:   conv.User1ID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	if err := c.InMemory.Create(ctx, winner); err != nil {
		return err
	}
	return sentinel.ErrConflict
}

func (s *ServiceSuite) TestSendMessageLostCreateRaceConvergesOnWinner() {
	contested := &contestedConversations{InMemory: s.conversations}
	svc := New(s.messages, contested, s.groups, s.users, s.analyzer, NewMemoryTx(), nil)

	s.analyzer.EXPECT().Analyze("hello").Return(0.0)
	view, err := svc.SendMessage(s.as("user1"), "user2", "hello")
	s.Require().NoError(err)

	convs, err := s.conversations.ListByUser(context.Background(), "user1")
	s.Require().NoError(err)
	s.Require().Len(convs, 1)
	// The loser adopts the winner's row: orientation preserved, last message
	// bumped.
	s.Equal("user2", convs[0].User1ID)
	s.Equal("user1", convs[0].User2ID)
	s.Equal(view.ID, convs[0].LastMessageID)
	s.Equal(2, contested.lookups)
}

func (s *ServiceSuite) TestConversationCreatedOnceAcrossDirections() {
	s.send("user1", "user2", "hi", 0)
	s.advance(time.Minute)
	s.send("user2", "user1", "hi back", 0)

	convs, err := s.conversations.ListByUser(context.Background(), "user1")
	s.Require().NoError(err)
	s.Require().Len(convs, 1)
	s.Equal("user1", convs[0].User1ID)
	s.Equal("user2", convs[0].User2ID)
}

func (s *ServiceSuite) TestConversationTracksLastMessage() {
	s.send("user1", "user2", "first", 0)
	s.advance(time.Minute)
	s.send("user1", "user2", "second", 0)

	convs, err := s.conversations.ListByUser(context.Background(), "user1")
	s.Require().NoError(err)
	s.Require().Len(convs, 1)
	s.Equal(int64(2), convs[0].LastMessageID)
	s.Equal(s.now, convs[0].UpdatedAt)
}

func (s *ServiceSuite) TestGetMessagesMarksReceivedRead() {
	s.send("user1", "user2", "one", 0)
	s.send("user1", "user2", "two", 0)
	s.send("user2", "user1", "reply", 0)

	// receiver opens the thread: the two inbound messages flip to read
	msgs, err := s.svc.GetMessages(s.as("user2"), "user1", 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 3)
	s.True(msgs[0].Read)
	s.True(msgs[1].Read)
	s.False(msgs[2].Read) // user2's own message awaits user1

	// the sender now sees their messages as read
	msgs, err = s.svc.GetMessages(s.as("user1"), "user2", 0)
	s.Require().NoError(err)
	s.True(msgs[0].Read)
	s.True(msgs[1].Read)
	s.True(msgs[2].Read) // reading the thread consumed user2's reply too
}

func (s *ServiceSuite) TestGetMessagesDoesNotMarkOwnSent() {
	s.send("user1", "user2", "hello", 0)

	msgs, err := s.svc.GetMessages(s.as("user1"), "user2", 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.False(msgs[0].Read)
}

func (s *ServiceSuite) TestGetMessagesAfterID() {
	s.send("user1", "user2", "one", 0)
	s.send("user1", "user2", "two", 0)
	s.send("user1", "user2", "three", 0)

	msgs, err := s.svc.GetMessages(s.as("user2"), "user1", 2)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("three", msgs[0].Content)
}

func (s *ServiceSuite) TestGetMessagesUnknownUser() {
	_, err := s.svc.GetMessages(s.as("user1"), "nobody", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListConversationsJoinsNamesAndLastMessage() {
	s.send("user1", "user2", "hi bob", 0)
	s.advance(time.Minute)
	s.send("user3", "user1", "hi alice", 0)

	views, err := s.svc.ListConversations(s.as("user1"))
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	// most recently active first
	s.Equal("Carol Davis", views[0].Name)
	s.Equal("Bob Smith", views[1].Name)
	s.False(views[0].IsGroup)
	s.Require().NotNil(views[0].LastMessage)
	s.Equal("hi alice", views[0].LastMessage.Content)
	s.Equal("Carol Davis", views[0].LastMessage.SenderName)
}

func (s *ServiceSuite) TestCreateGroupDedupesAndSkipsUnknown() {
	view, err := s.svc.CreateGroup(s.as("user1"), "Team", "", []string{"user2", "user2", " user3 ", "ghost"})
	s.Require().NoError(err)
	s.True(view.IsGroup)
	s.Equal(3, view.MemberCount)

	g, err := s.groups.FindByID(context.Background(), view.ID)
	s.Require().NoError(err)
	s.Equal([]string{"user1", "user2", "user3"}, g.MemberIDs)
	s.Equal("user1", g.CreatedBy)
}

func (s *ServiceSuite) TestCreateGroupRequiresName() {
	_, err := s.svc.CreateGroup(s.as("user1"), "  ", "", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCreateGroupRequiresAnotherMember() {
	_, err := s.svc.CreateGroup(s.as("user1"), "Solo", "", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	// the creator alone, even listed explicitly, is still not enough
	_, err = s.svc.CreateGroup(s.as("user1"), "Solo", "", []string{"user1", "ghost"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSendGroupMessageMembershipChecks() {
	view, err := s.svc.CreateGroup(s.as("user1"), "Team", "", []string{"user2"})
	s.Require().NoError(err)

	_, err = s.svc.SendGroupMessage(s.as("user3"), view.ID, "let me in")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.SendGroupMessage(s.as("user1"), 999, "hello?")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSendGroupMessageStoresAndBumpsGroup() {
	view, err := s.svc.CreateGroup(s.as("user1"), "Team", "", []string{"user2"})
	s.Require().NoError(err)

	s.advance(time.Hour)
	s.analyzer.EXPECT().Analyze("this is terrible").Return(-0.7)

	msg, err := s.svc.SendGroupMessage(s.as("user2"), view.ID, "this is terrible")
	s.Require().NoError(err)
	s.Equal(sentiment.Negative, msg.Sentiment)
	s.True(msg.IsGroupMessage)
	s.Equal("Bob Smith", msg.SenderName)

	g, err := s.groups.FindByID(context.Background(), view.ID)
	s.Require().NoError(err)
	s.Equal(s.now, g.UpdatedAt)
}

func (s *ServiceSuite) TestGetGroupMessagesMemberOnly() {
	view, err := s.svc.CreateGroup(s.as("user1"), "Team", "", []string{"user2"})
	s.Require().NoError(err)

	s.analyzer.EXPECT().Analyze(gomock.Any()).Return(0.0).Times(2)
	_, err = s.svc.SendGroupMessage(s.as("user1"), view.ID, "one")
	s.Require().NoError(err)
	_, err = s.svc.SendGroupMessage(s.as("user2"), view.ID, "two")
	s.Require().NoError(err)

	msgs, err := s.svc.GetGroupMessages(s.as("user1"), view.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("Alice Johnson", msgs[0].SenderName)
	s.Equal("Bob Smith", msgs[1].SenderName)

	_, err = s.svc.GetGroupMessages(s.as("user3"), view.ID, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestListChatsMergesAndSorts() {
	s.send("user1", "user2", "direct", 0)

	s.advance(time.Minute)
	group, err := s.svc.CreateGroup(s.as("user1"), "Team", "planning", []string{"user3"})
	s.Require().NoError(err)

	s.advance(time.Minute)
	s.send("user3", "user1", "newest", 0)

	chats, err := s.svc.ListChats(s.as("user1"))
	s.Require().NoError(err)
	s.Require().Len(chats, 3)

	s.False(chats[0].IsGroup)
	s.Equal("Carol Davis", chats[0].Name)
	s.True(chats[1].IsGroup)
	s.Equal(group.ID, chats[1].ID)
	s.Equal("Bob Smith", chats[2].Name)
}

func (s *ServiceSuite) TestGroupActivityReordersChats() {
	s.send("user1", "user2", "direct", 0)
	s.advance(time.Minute)
	group, err := s.svc.CreateGroup(s.as("user1"), "Team", "", []string{"user2"})
	s.Require().NoError(err)

	s.advance(time.Minute)
	s.send("user1", "user2", "newer direct", 0)

	s.advance(time.Minute)
	s.analyzer.EXPECT().Analyze("group wins").Return(0.0)
	_, err = s.svc.SendGroupMessage(s.as("user1"), group.ID, "group wins")
	s.Require().NoError(err)

	chats, err := s.svc.ListChats(s.as("user1"))
	s.Require().NoError(err)
	s.Require().Len(chats, 2)
	s.True(chats[0].IsGroup)
}
