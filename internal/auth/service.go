package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storycat.app/internal/ids"
	"storycat.app/internal/pipeline"
)

const defaultTokenTTL = 12 * time.Hour

// Service provides sign-in, token verification and employee management.
type Service struct {
	store    ProfileStore
	now      func() time.Time
	tokenTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given profile store.
func NewService(store ProfileStore, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: profile store is required")
	}
	svc := &Service{
		store:    store,
		now:      time.Now,
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

// Login authenticates email/password credentials and issues a signed token.
// Failures carry stable codes, never backend error text.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") || password == "" {
		return Session{}, &LoginError{Code: CodeInvalidCredentials}
	}
	profile, err := s.store.FindProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, &LoginError{Code: CodeInvalidCredentials}
		}
		return Session{}, err
	}
	if profile.Status != ProfileStatusActive {
		return Session{}, &LoginError{Code: CodeAccountDisabled}
	}
	if err := VerifyPassword(profile.PasswordHash, password); err != nil {
		return Session{}, &LoginError{Code: CodeInvalidCredentials}
	}

	token, err := GenerateToken(*profile, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.tokenTTL),
		Profile:   *profile,
	}, nil
}

// Authenticate validates a bearer token and loads the current profile.
// The profile row is re-read so role changes and deletions take effect
// before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (Profile, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return Profile{}, ErrInvalidToken
	}
	profile, err := s.store.FindProfile(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, ErrInvalidToken
		}
		return Profile{}, err
	}
	if profile.Status != ProfileStatusActive {
		return Profile{}, ErrInvalidToken
	}
	return *profile, nil
}

// NewEmployee is the input for employee creation.
type NewEmployee struct {
	Email    string
	FullName string
	Role     pipeline.Role
	Password string
}

// CreateEmployee provisions a profile. Admin only.
func (s *Service) CreateEmployee(ctx context.Context, actor Profile, in NewEmployee) (Profile, error) {
	if !actor.IsAdmin() {
		return Profile{}, ErrUnauthorized
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Profile{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return Profile{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if !pipeline.ValidRole(in.Role) {
		return Profile{}, fmt.Errorf("%w: unknown role %s", ErrInvalidInput, in.Role)
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	profile := &Profile{
		ID:           ids.New(),
		Email:        email,
		FullName:     fullName,
		Role:         in.Role,
		PasswordHash: hash,
		Status:       ProfileStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return Profile{}, err
	}
	return *profile, nil
}

// DeleteEmployee removes a profile. Admin only; admins cannot delete themselves.
func (s *Service) DeleteEmployee(ctx context.Context, actor Profile, id string) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}
	if id == actor.ID {
		return fmt.Errorf("%w: cannot delete own profile", ErrInvalidInput)
	}
	return s.store.DeleteProfile(ctx, id)
}

// ListEmployees returns all profiles. Admin only.
func (s *Service) ListEmployees(ctx context.Context, actor Profile) ([]*Profile, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.store.ListProfiles(ctx)
}

// Profile loads a single profile by id.
func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	p, err := s.store.FindProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}
