package models

import (
	"time"

	"pulse/pkg/email"
)

// User is an identity record. The id is opaque and immutable after creation;
// email is optional but unique when present.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName derives the presentation name. It is computed on read, never
// stored. Priority: first+last name, first name, email local-part, then a
// "User {id}" fallback.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Email != "":
		return email.LocalPart(u.Email)
	default:
		return "User " + u.ID
	}
}
