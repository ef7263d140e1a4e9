package auth

import "context"

// ProfileStore describes persistence operations required by the auth subsystem.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	FindProfile(ctx context.Context, id string) (*Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]*Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}
