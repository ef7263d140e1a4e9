package auth

import (
	"time"

	"storycat.app/internal/pipeline"
)

const (
	ProfileStatusActive   = "active"
	ProfileStatusDisabled = "disabled"
)

// Profile is an employee account. Role is immutable through this API; only
// an admin may create or delete profiles.
type Profile struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	FullName     string        `json:"full_name"`
	Role         pipeline.Role `json:"role"`
	PasswordHash string        `json:"-"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role.
func (p Profile) IsAdmin() bool { return p.Role == pipeline.RoleAdmin }
