package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "full name wins",
			user: User{ID: "u1", Email: "alice@example.com", FirstName: "Alice", LastName: "Johnson"},
			want: "Alice Johnson",
		},
		{
			name: "first name only",
			user: User{ID: "u1", Email: "alice@example.com", FirstName: "Alice"},
			want: "Alice",
		},
		{
			name: "email local-part when no names",
			user: User{ID: "u1", Email: "alice.j@example.com"},
			want: "alice.j",
		},
		{
			name: "id fallback",
			user: User{ID: "u1"},
			want: "User u1",
		},
		{
			name: "last name alone does not count",
			user: User{ID: "u1", LastName: "Johnson", Email: "a@b.c"},
			want: "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}
