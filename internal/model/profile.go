package model

import (
	"errors"
	"time"
)

// DefaultAvatar is the glyph assigned to profiles created without one.
const DefaultAvatar = "✍️"

// Profile represents a user profile stored under user:<id>.
// ID and JoinDate are immutable once the profile is created; update paths
// must never overwrite them.
type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	JoinDate       time.Time `json:"joinDate"`
	WorksPublished int       `json:"worksPublished"`
	TotalLikes     int       `json:"totalLikes"`
	Followers      int       `json:"followers"`
	Following      int       `json:"following"`
}

// SignupRequest represents the data needed to sign up a new user
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
}

var (
	// ErrProfileNotFound is returned when no profile is stored for a user
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUsernameTaken is returned when the username mapping already exists
	ErrUsernameTaken = errors.New("username already taken")
)
