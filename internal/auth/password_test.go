package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher()

	hash, err := h.Hash("Sw0rdfish!")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "Sw0rdfish!", hash)

	assert.True(t, h.Verify("Sw0rdfish!", hash))
	assert.False(t, h.Verify("swordfish", hash))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher()

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_EmptyOrMalformedHashNeverMatches(t *testing.T) {
	h := NewBcryptHasher()

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("", ""))
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@capgemini.com", "alice"},
		{"first.last@capgemini.com", "first.last"},
		{"no-at-sign", "no-at-sign"},
		{"a@b@c", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, UsernameFromEmail(tt.email))
		})
	}
}

func TestNewIdentity(t *testing.T) {
	id := NewIdentity("alice@capgemini.com", "genai")
	assert.Equal(t, Identity{Email: "alice@capgemini.com", Username: "alice", Group: "genai"}, id)
}
