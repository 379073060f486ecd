package models

import (
	"time"

	"pulse/internal/sentiment"
)

// View objects are what the API serializes. Services build them with explicit
// user lookups before returning; no store access happens during serialization.

// ParticipantView is a user as seen inside chat payloads.
type ParticipantView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// MessageView is a direct message with display names joined in.
type MessageView struct {
	ID             int64           `json:"id"`
	Content        string          `json:"content"`
	SenderID       string          `json:"sender_id"`
	ReceiverID     string          `json:"receiver_id"`
	SenderName     string          `json:"sender_name"`
	ReceiverName   string          `json:"receiver_name"`
	Sentiment      sentiment.Label `json:"sentiment"`
	SentimentScore float64         `json:"sentiment_score"`
	Timestamp      time.Time       `json:"timestamp"`
	Read           bool            `json:"read"`
}

// GroupMessageView is a group message with the sender joined in. Group
// messages carry no read flag.
type GroupMessageView struct {
	ID              int64           `json:"id"`
	Content         string          `json:"content"`
	SenderID        string          `json:"sender_id"`
	GroupID         int64           `json:"group_id"`
	SenderName      string          `json:"sender_name"`
	SenderAvatarURL string          `json:"sender_avatar_url,omitempty"`
	Sentiment       sentiment.Label `json:"sentiment"`
	SentimentScore  float64         `json:"sentiment_score"`
	Timestamp       time.Time       `json:"timestamp"`
	IsGroupMessage  bool            `json:"is_group_message"`
}

// ChatView is one entry of the unified chat list: either a direct conversation
// or a group, discriminated by IsGroup. Conversations and groups are merged
// and sorted by UpdatedAt descending; this is presentation-layer aggregation,
// not a stored entity.
type ChatView struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	IsGroup     bool              `json:"is_group"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Description string            `json:"description,omitempty"`
	OtherUser   *ParticipantView  `json:"other_user,omitempty"`
	LastMessage *MessageView      `json:"last_message,omitempty"`
	MemberCount int               `json:"member_count,omitempty"`
	Members     []ParticipantView `json:"members,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitzero"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
