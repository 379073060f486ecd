package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	"pulse/internal/messaging/models"
	"pulse/internal/sentiment"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/platform/sentinel"
	"pulse/pkg/requestcontext"
)

const maxMessageLength = 4000

// SendMessage scores and stores a direct message from the current user. The
// message insert, the conversation upsert, and the last-message bump commit
// together.
func (s *Service) SendMessage(ctx context.Context, receiverID, content string) (*models.MessageView, error) {
	senderID := requestcontext.UserID(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, dErrors.New(dErrors.CodeValidation, "message content is too long")
	}

	// Self-messaging is allowed; the pair (sender, sender) gets its own
	// conversation like any other.
	receiver, err := s.users.GetUser(ctx, receiverID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "receiver not found")
		}
		return nil, err
	}
	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	score := s.analyzer.Analyze(content)
	now := requestcontext.Now(ctx)

	msg := &models.Message{
		Content:        content,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Sentiment:      sentiment.LabelFor(score),
		SentimentScore: score,
		SentAt:         now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.messages.Create(ctx, msg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store message")
		}
		conv, err := s.ensureConversation(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if err := s.conversations.SetLastMessage(ctx, conv.ID, msg.ID, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update conversation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveMessageSent("direct", string(msg.Sentiment))

	view := messageView(msg)
	view.SenderName = sender.DisplayName()
	view.ReceiverName = receiver.DisplayName()
	return view, nil
}

// ensureConversation finds the pair's conversation or creates it. A concurrent
// creator losing the insert race falls back to the winner's row.
func (s *Service) ensureConversation(ctx context.Context, senderID, receiverID string) (*models.Conversation, error) {
	conv, err := s.conversations.FindByPair(ctx, senderID, receiverID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up conversation")
	}

	now := requestcontext.Now(ctx)
	conv = &models.Conversation{
		User1ID:   senderID,
		User2ID:   receiverID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.conversations.Create(ctx, conv)
	if err == nil {
		return conv, nil
	}
	if errors.Is(err, sentinel.ErrConflict) {
		conv, err = s.conversations.FindByPair(ctx, senderID, receiverID)
		if err == nil {
			return conv, nil
		}
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create conversation")
}

// GetMessages returns the direct messages between the current user and the
// other user, oldest first. Retrieval doubles as the read receipt: unread
// messages addressed to the current user are marked read in the same
// transaction, and the returned rows reflect the new state.
func (s *Service) GetMessages(ctx context.Context, otherID string, afterID int64) ([]*models.MessageView, error) {
	viewerID := requestcontext.UserID(ctx)

	other, err := s.users.GetUser(ctx, otherID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	viewer, err := s.users.GetUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	var msgs []*models.Message
	var readIDs []int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		msgs, err = s.messages.ListBetween(ctx, viewerID, otherID, afterID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load messages")
		}
		for _, m := range msgs {
			if m.ReceiverID == viewerID && !m.Read {
				readIDs = append(readIDs, m.ID)
			}
		}
		if len(readIDs) == 0 {
			return nil
		}
		if err := s.messages.MarkRead(ctx, readIDs); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark messages read")
		}
		for _, m := range msgs {
			if m.ReceiverID == viewerID {
				m.Read = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveMessagesRead(len(readIDs))

	names := map[string]string{
		viewerID: viewer.DisplayName(),
		otherID:  other.DisplayName(),
	}
	return lo.Map(msgs, func(m *models.Message, _ int) *models.MessageView {
		v := messageView(m)
		v.SenderName = names[m.SenderID]
		v.ReceiverName = names[m.ReceiverID]
		return v
	}), nil
}

func messageView(m *models.Message) *models.MessageView {
	return &models.MessageView{
		ID:             m.ID,
		Content:        m.Content,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Sentiment:      m.Sentiment,
		SentimentScore: m.SentimentScore,
		Timestamp:      m.SentAt,
		Read:           m.Read,
	}
}
