package service

import (
	"context"

	"github.com/samber/lo"

	"pulse/internal/messaging/models"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/requestcontext"
)

// ListConversations returns the current user's direct conversations, most
// recently active first, each with the other participant and the latest
// message joined in.
func (s *Service) ListConversations(ctx context.Context) ([]*models.ChatView, error) {
	viewerID := requestcontext.UserID(ctx)

	convs, err := s.conversations.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conversations")
	}
	return s.conversationViews(ctx, viewerID, convs)
}

func (s *Service) conversationViews(ctx context.Context, viewerID string, convs []*models.Conversation) ([]*models.ChatView, error) {
	lastIDs := lo.FilterMap(convs, func(c *models.Conversation, _ int) (int64, bool) {
		return c.LastMessageID, c.LastMessageID != 0
	})
	lastMessages, err := s.messages.FindByIDs(ctx, lastIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load last messages")
	}

	otherIDs := lo.FilterMap(convs, func(c *models.Conversation, _ int) (string, bool) {
		other, ok := c.OtherUser(viewerID)
		return other, ok
	})
	users, err := s.users.GetUsers(ctx, append(otherIDs, viewerID))
	if err != nil {
		return nil, err
	}

	views := make([]*models.ChatView, 0, len(convs))
	for _, c := range convs {
		otherID, ok := c.OtherUser(viewerID)
		if !ok {
			// viewer is not a participant, listing bug upstream
			continue
		}
		view := &models.ChatView{
			ID:        c.ID,
			Name:      displayName(users, otherID),
			IsGroup:   false,
			OtherUser: participantView(users[otherID]),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if view.OtherUser == nil {
			view.OtherUser = &models.ParticipantView{ID: otherID, Name: otherID}
		}
		view.AvatarURL = view.OtherUser.AvatarURL
		if last, ok := lastMessages[c.LastMessageID]; ok {
			v := messageView(last)
			v.SenderName = displayName(users, last.SenderID)
			v.ReceiverName = displayName(users, last.ReceiverID)
			view.LastMessage = v
		}
		views = append(views, view)
	}
	return views, nil
}
