// Package auth gates owner-only mutations. The owner secret is kept only as a
// bcrypt hash, and a successful check can be exchanged for a signed session
// token.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Guard struct {
	hash []byte
}

// NewGuard hashes secret with the given bcrypt cost.
func NewGuard(secret string, cost int) (*Guard, error) {
	if secret == "" {
		return nil, fmt.Errorf("owner secret must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash owner secret: %w", err)
	}
	return &Guard{hash: hash}, nil
}

// Authorize reports whether supplied matches the owner secret.
func (g *Guard) Authorize(supplied string) bool {
	if supplied == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil
}
