package models

import "time"

// Group is a named chat with a fixed member set.
//
// Invariants:
//   - Name is non-empty
//   - The creator is always a member
//   - MemberIDs holds no duplicates
//
// Membership is fixed after creation; there is no add/remove operation in the
// current scope.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
