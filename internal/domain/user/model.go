package user

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered account. Accounts are never hard-deleted; revoking
// access is done by flipping Active off.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity carried through request contexts
// and embedded in bearer tokens.
type Principal struct {
	UserID   string
	Username string
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}
