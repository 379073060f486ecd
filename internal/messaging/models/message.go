package models

import (
	"time"

	"pulse/internal/sentiment"
)

// Message is a direct message between two users.
//
// Invariants:
//   - Content is non-empty (validated at the service boundary)
//   - Sender and receiver reference existing users
//   - SentAt is immutable after creation
//   - Read only ever transitions false → true, as a side effect of the
//     receiver fetching the conversation
//
// Messages are never deleted. Self-messaging (sender == receiver) is allowed.
type Message struct {
	ID             int64           `json:"id"`
	Content        string          `json:"content"`
	SenderID       string          `json:"sender_id"`
	ReceiverID     string          `json:"receiver_id"`
	Sentiment      sentiment.Label `json:"sentiment"`
	SentimentScore float64         `json:"sentiment_score"`
	SentAt         time.Time       `json:"timestamp"`
	Read           bool            `json:"read"`
}

// GroupMessage is a message posted to a group. Group messages carry no
// per-member read state.
type GroupMessage struct {
	ID             int64           `json:"id"`
	Content        string          `json:"content"`
	SenderID       string          `json:"sender_id"`
	GroupID        int64           `json:"group_id"`
	Sentiment      sentiment.Label `json:"sentiment"`
	SentimentScore float64         `json:"sentiment_score"`
	SentAt         time.Time       `json:"timestamp"`
}
