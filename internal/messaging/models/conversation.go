package models

import "time"

// Conversation is the aggregate for one direct-message thread: exactly one row
// per unordered user pair.
//
// The (User1ID, User2ID) orientation is whatever the first send happened to
// produce and is preserved for the row's lifetime; lookups always check both
// orderings. LastMessageID is 0 until the first message lands (it never stays
// 0 in practice since the row is created together with its first message).
type Conversation struct {
	ID            int64     `json:"id"`
	User1ID       string    `json:"user1_id"`
	User2ID       string    `json:"user2_id"`
	LastMessageID int64     `json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Involves reports whether userID is one of the two participants.
func (c *Conversation) Involves(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the participant that is not viewerID. ok is false when the
// viewer is neither participant; callers must treat that as a guard failure.
func (c *Conversation) OtherUser(viewerID string) (string, bool) {
	switch viewerID {
	case c.User1ID:
		return c.User2ID, true
	case c.User2ID:
		return c.User1ID, true
	default:
		return "", false
	}
}
