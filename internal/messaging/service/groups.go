package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	identity "pulse/internal/identity/models"
	"pulse/internal/messaging/models"
	"pulse/internal/sentiment"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/platform/sentinel"
	platformstrings "pulse/pkg/platform/strings"
	"pulse/pkg/requestcontext"
)

const maxGroupNameLength = 120

// CreateGroup creates a group owned by the current user. The creator is
// always a member. Requested member ids are deduplicated and unresolvable
// ones are dropped rather than failing the whole request.
func (s *Service) CreateGroup(ctx context.Context, name, description string, memberIDs []string) (*models.ChatView, error) {
	creatorID := requestcontext.UserID(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "group name is required")
	}
	if len(name) > maxGroupNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "group name is too long")
	}

	requested := platformstrings.DedupeAndTrim(append([]string{creatorID}, memberIDs...))
	users, err := s.users.GetUsers(ctx, requested)
	if err != nil {
		return nil, err
	}
	members := lo.Filter(requested, func(id string, _ int) bool {
		_, ok := users[id]
		return ok
	})
	// the creator alone is not a group
	if len(members) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "a group needs at least one other member")
	}

	now := requestcontext.Now(ctx)
	g := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   creatorID,
		MemberIDs:   members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.groups.Create(ctx, g)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create group")
	}

	s.metrics.ObserveGroupCreated()
	return s.groupView(g, users), nil
}

// SendGroupMessage scores and stores a message in a group the current user
// belongs to. The insert and the group's activity bump commit together.
func (s *Service) SendGroupMessage(ctx context.Context, groupID int64, content string) (*models.GroupMessageView, error) {
	senderID := requestcontext.UserID(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, dErrors.New(dErrors.CodeValidation, "message content is too long")
	}

	g, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsMember(senderID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this group")
	}
	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	score := s.analyzer.Analyze(content)
	now := requestcontext.Now(ctx)

	msg := &models.GroupMessage{
		Content:        content,
		SenderID:       senderID,
		GroupID:        groupID,
		Sentiment:      sentiment.LabelFor(score),
		SentimentScore: score,
		SentAt:         now,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.groups.CreateMessage(ctx, msg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store group message")
		}
		if err := s.groups.Touch(ctx, groupID, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update group")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveMessageSent("group", string(msg.Sentiment))

	view := groupMessageView(msg)
	view.SenderName = sender.DisplayName()
	view.SenderAvatarURL = sender.AvatarURL
	return view, nil
}

// GetGroupMessages returns a group's messages, oldest first, for a member of
// the group. Group messages carry no read state.
func (s *Service) GetGroupMessages(ctx context.Context, groupID, afterID int64) ([]*models.GroupMessageView, error) {
	viewerID := requestcontext.UserID(ctx)

	g, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsMember(viewerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a member of this group")
	}

	msgs, err := s.groups.ListMessages(ctx, groupID, afterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group messages")
	}

	senderIDs := lo.Uniq(lo.Map(msgs, func(m *models.GroupMessage, _ int) string {
		return m.SenderID
	}))
	users, err := s.users.GetUsers(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(msgs, func(m *models.GroupMessage, _ int) *models.GroupMessageView {
		v := groupMessageView(m)
		v.SenderName = displayName(users, m.SenderID)
		if u, ok := users[m.SenderID]; ok {
			v.SenderAvatarURL = u.AvatarURL
		}
		return v
	}), nil
}

func (s *Service) findGroup(ctx context.Context, id int64) (*models.Group, error) {
	g, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load group")
	}
	return g, nil
}

func (s *Service) groupView(g *models.Group, users map[string]*identity.User) *models.ChatView {
	view := &models.ChatView{
		ID:          g.ID,
		Name:        g.Name,
		IsGroup:     true,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		MemberCount: len(g.MemberIDs),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	for _, id := range g.MemberIDs {
		if u, ok := users[id]; ok {
			view.Members = append(view.Members, *participantView(u))
		} else {
			view.Members = append(view.Members, models.ParticipantView{ID: id, Name: id})
		}
	}
	return view
}

func groupMessageView(m *models.GroupMessage) *models.GroupMessageView {
	return &models.GroupMessageView{
		ID:             m.ID,
		Content:        m.Content,
		SenderID:       m.SenderID,
		GroupID:        m.GroupID,
		Sentiment:      m.Sentiment,
		SentimentScore: m.SentimentScore,
		Timestamp:      m.SentAt,
		IsGroupMessage: true,
	}
}
