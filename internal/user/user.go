package user

import (
	"time"

	"github.com/knpstore/sport-store/internal/validation"
)

// User is a store account. The password hash never leaves the server.
type User struct {
	ID             string            `json:"_id"`
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	HashedPassword string            `json:"-"`
	DateOfBirth    *time.Time        `json:"date_of_birth"`
	Gender         validation.Gender `json:"gender,omitempty"`
	IsAdmin        bool              `json:"is_admin"`
	CreatedAt      time.Time         `json:"created_at"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterInput carries the data required to create an account.
type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	DateOfBirth *time.Time
	Gender      validation.Gender
}

// ProfileInput carries the optional profile fields collected after sign-up.
// Nil fields are left unchanged.
type ProfileInput struct {
	Gender      *validation.Gender
	DateOfBirth *time.Time
}
