package auth

import (
	"fmt"

	"github.com/julefagdag/agenda/pkg/utils"
)

// PasswordGate checks the shared organizer password against a bcrypt hash.
type PasswordGate struct {
	hash string
}

// NewPasswordGate prefers hash; a plain password is hashed once here.
func NewPasswordGate(plain, hash string) (*PasswordGate, error) {
	if hash != "" {
		if !utils.IsHash(hash) {
			return nil, fmt.Errorf("admin password hash is not a bcrypt hash")
		}
		return &PasswordGate{hash: hash}, nil
	}
	if plain == "" {
		return nil, fmt.Errorf("admin password is empty")
	}
	h, err := utils.HashPassword(plain)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &PasswordGate{hash: h}, nil
}

// Check reports whether password matches.
func (g *PasswordGate) Check(password string) bool {
	return utils.CheckPassword(password, g.hash)
}
