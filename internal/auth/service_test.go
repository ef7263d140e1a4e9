package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storycat.app/internal/auth"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/store/memory"
)

func newAuthService(t *testing.T) (*auth.Service, *memory.Store) {
	t.Helper()
	t.Setenv("STORYCAT_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()
	mem := memory.New()
	svc, err := auth.NewService(mem)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, mem
}

func seedProfile(t *testing.T, mem *memory.Store, id, email, password string, role pipeline.Role, status string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	err = mem.CreateProfile(context.Background(), &auth.Profile{
		ID:           id,
		Email:        email,
		FullName:     "Test User",
		Role:         role,
		PasswordHash: hash,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, mem := newAuthService(t)
	seedProfile(t, mem, "u1", "writer@storycat.test", "correct horse", pipeline.RoleCopywriter, auth.ProfileStatusActive)

	session, err := svc.Login(context.Background(), "Writer@Storycat.Test", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("empty token")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Fatalf("token already expired: %v", session.ExpiresAt)
	}

	profile, err := svc.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if profile.ID != "u1" || profile.Role != pipeline.RoleCopywriter {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestLoginFailureCodes(t *testing.T) {
	svc, mem := newAuthService(t)
	seedProfile(t, mem, "u1", "writer@storycat.test", "correct horse", pipeline.RoleCopywriter, auth.ProfileStatusActive)
	seedProfile(t, mem, "u2", "gone@storycat.test", "pw", pipeline.RoleDesigner, auth.ProfileStatusDisabled)

	cases := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"wrong password", "writer@storycat.test", "nope", auth.CodeInvalidCredentials},
		{"unknown account", "nobody@storycat.test", "pw", auth.CodeInvalidCredentials},
		{"disabled account", "gone@storycat.test", "pw", auth.CodeAccountDisabled},
		{"malformed email", "not-an-email", "pw", auth.CodeInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			var le *auth.LoginError
			if !errors.As(err, &le) {
				t.Fatalf("expected LoginError, got %v", err)
			}
			if le.Code != tc.code {
				t.Fatalf("code = %q, want %q", le.Code, tc.code)
			}
			if !errors.Is(err, auth.ErrUnauthorized) {
				t.Fatalf("LoginError must unwrap to ErrUnauthorized")
			}
		})
	}
}

func TestAuthenticateRejectsStaleTokens(t *testing.T) {
	svc, mem := newAuthService(t)
	seedProfile(t, mem, "u1", "writer@storycat.test", "pw", pipeline.RoleCopywriter, auth.ProfileStatusActive)

	session, err := svc.Login(context.Background(), "writer@storycat.test", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Deleting the profile invalidates outstanding tokens immediately.
	if err := mem.DeleteProfile(context.Background(), "u1"); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), session.Token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after deletion, got %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "garbage.token.value"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	t.Setenv("STORYCAT_AUTH_SECRET", "test-secret")
	auth.ResetSecretForTests()

	profile := auth.Profile{ID: "u1", FullName: "Test User", Role: pipeline.RoleDesigner}
	token, err := auth.GenerateToken(profile, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := auth.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != pipeline.RoleDesigner {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// A token signed under a different secret must not validate.
	t.Setenv("STORYCAT_AUTH_SECRET", "other-secret")
	auth.ResetSecretForTests()
	if _, err := auth.ParseAndValidate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken under rotated secret, got %v", err)
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	svc, mem := newAuthService(t)
	seedProfile(t, mem, "admin-1", "admin@storycat.test", "pw", pipeline.RoleAdmin, auth.ProfileStatusActive)
	admin, err := svc.Profile(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("load admin: %v", err)
	}

	created, err := svc.CreateEmployee(context.Background(), admin, auth.NewEmployee{
		Email:    "New.Writer@Storycat.Test",
		FullName: "New Writer",
		Role:     pipeline.RoleCopywriter,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if created.Email != "new.writer@storycat.test" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.Status != auth.ProfileStatusActive {
		t.Fatalf("new employees start active, got %q", created.Status)
	}

	// Duplicate email.
	_, err = svc.CreateEmployee(context.Background(), admin, auth.NewEmployee{
		Email:    "new.writer@storycat.test",
		FullName: "Other",
		Role:     pipeline.RoleDesigner,
		Password: "password123",
	})
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Unknown role.
	_, err = svc.CreateEmployee(context.Background(), admin, auth.NewEmployee{
		Email:    "x@storycat.test",
		FullName: "X",
		Role:     pipeline.Role("intern"),
		Password: "password123",
	})
	if !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}

	// Non-admin actor.
	_, err = svc.CreateEmployee(context.Background(), created, auth.NewEmployee{
		Email:    "y@storycat.test",
		FullName: "Y",
		Role:     pipeline.RoleDesigner,
		Password: "password123",
	})
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
}

func TestDeleteEmployeeGuards(t *testing.T) {
	svc, mem := newAuthService(t)
	seedProfile(t, mem, "admin-1", "admin@storycat.test", "pw", pipeline.RoleAdmin, auth.ProfileStatusActive)
	seedProfile(t, mem, "u1", "writer@storycat.test", "pw", pipeline.RoleCopywriter, auth.ProfileStatusActive)
	admin, _ := svc.Profile(context.Background(), "admin-1")

	if err := svc.DeleteEmployee(context.Background(), admin, "admin-1"); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("self-deletion must be refused, got %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), admin, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), admin, "u1"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a second delete, got %v", err)
	}
}
