package auth

import "github.com/google/uuid"

// NewSingleUseToken returns a random identifier for account confirmation
// and password-reset links. Stored on the user row until consumed.
func NewSingleUseToken() string {
	return uuid.NewString()
}
