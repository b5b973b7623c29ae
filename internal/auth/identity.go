package auth

import "strings"

// Identity is the authenticated principal carried by a session.
type Identity struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Group    string `json:"group"`
}

// NewIdentity derives the username from the local part of email.
func NewIdentity(email, group string) Identity {
	return Identity{
		Email:    email,
		Username: UsernameFromEmail(email),
		Group:    group,
	}
}

// UsernameFromEmail returns everything before the first '@', or the whole
// string when there is none.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
