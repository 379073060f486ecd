package store

import (
	"pulse/internal/identity/models"
)

// DemoUsers returns the demo fixture set. Timestamps are left zero; callers
// stamp them before insertion.
func DemoUsers() []*models.User {
	return []*models.User{
		{
			ID:        "user1",
			Email:     "alice@example.com",
			FirstName: "Alice",
			LastName:  "Johnson",
			AvatarURL: "https://ui-avatars.com/api/?name=Alice+Johnson&background=0d6efd&color=fff",
		},
		{
			ID:        "user2",
			Email:     "bob@example.com",
			FirstName: "Bob",
			LastName:  "Smith",
			AvatarURL: "https://ui-avatars.com/api/?name=Bob+Smith&background=198754&color=fff",
		},
		{
			ID:        "user3",
			Email:     "carol@example.com",
			FirstName: "Carol",
			LastName:  "Davis",
			AvatarURL: "https://ui-avatars.com/api/?name=Carol+Davis&background=dc3545&color=fff",
		},
	}
}
