package auth

import (
	"errors"
	"time"
)

// ErrNoSession indicates an operation that needs an active session was
// called before Login or after Logout.
var ErrNoSession = errors.New("auth: no active session")

// User describes a SelfDB user account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session holds the tokens returned by Login and Refresh.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	IsSuperuser  bool   `json:"is_superuser"`
}
