package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasPassword(t *testing.T) {
	empty := ""
	hash := "$2a$10$abc"

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"null hash", &User{Email: "a@capgemini.com"}, false},
		{"empty hash", &User{Email: "a@capgemini.com", PasswordHash: &empty}, false},
		{"activated", &User{Email: "a@capgemini.com", PasswordHash: &hash}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.HasPassword())
		})
	}
	assert.Equal(t, hash, (&User{PasswordHash: &hash}).Hash())
	assert.Empty(t, (&User{}).Hash())
}
