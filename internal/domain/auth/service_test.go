package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/pkg/jwt"
	"github.com/krib/krib-api/internal/pkg/password"
)

type fakeUserRepo struct {
	created *user.User
	byEmail *user.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.created = u
	f.byEmail = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if f.byEmail != nil && f.byEmail.ID == id {
		return f.byEmail, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.byEmail != nil && f.byEmail.Email == email {
		return f.byEmail, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) UpdateBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	return nil
}
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, ip string) error {
	return nil
}
func (f *fakeUserRepo) List(ctx context.Context, role *user.Role, limit, offset int) ([]*user.User, int, error) {
	return nil, 0, nil
}

func newTestService(repo *fakeUserRepo) *Service {
	jwtSvc := jwt.NewService("test-secret", time.Minute, time.Hour)
	return NewService(repo, jwtSvc, nil)
}

func TestRegister_CreatesGuestAccount(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "Fatima@Example.COM",
		Password:  "s3cret-password",
		FirstName: "Fatima",
		Role:      "guest",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if repo.created == nil {
		t.Fatal("expected user to be created")
	}
	if repo.created.Email != "fatima@example.com" {
		t.Fatalf("expected normalized email, got %q", repo.created.Email)
	}
	if repo.created.PasswordHash == "s3cret-password" {
		t.Fatal("password stored in plain text")
	}
	if !password.Verify("s3cret-password", repo.created.PasswordHash) {
		t.Fatal("stored hash does not verify against original password")
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair in response")
	}
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{byEmail: &user.User{
		ID:    uuid.New(),
		Email: "taken@example.com",
	}}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "taken@example.com",
		Password:  "s3cret-password",
		FirstName: "Omar",
		Role:      "host",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc := newTestService(&fakeUserRepo{})

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:     "sneaky@example.com",
		Password:  "s3cret-password",
		FirstName: "Sneaky",
		Role:      "admin",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLogin_VerifiesPassword(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	repo := &fakeUserRepo{byEmail: &user.User{
		ID:           uuid.New(),
		Email:        "guest@example.com",
		PasswordHash: hash,
		Role:         user.RoleGuest,
		Status:       user.StatusActive,
	}}
	svc := newTestService(repo)

	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "guest@example.com",
		Password: "correct-horse",
	}, "127.0.0.1"); err != nil {
		t.Fatalf("login with correct password failed: %v", err)
	}

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "guest@example.com",
		Password: "wrong-horse",
	}, "127.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_RejectsBannedUser(t *testing.T) {
	hash, _ := password.Hash("correct-horse")
	repo := &fakeUserRepo{byEmail: &user.User{
		ID:           uuid.New(),
		Email:        "banned@example.com",
		PasswordHash: hash,
		Role:         user.RoleGuest,
		IsBanned:     true,
	}}
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "banned@example.com",
		Password: "correct-horse",
	}, "127.0.0.1")
	if !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func TestRefresh_RotatesTokenPair(t *testing.T) {
	hash, _ := password.Hash("correct-horse")
	repo := &fakeUserRepo{byEmail: &user.User{
		ID:           uuid.New(),
		Email:        "guest@example.com",
		PasswordHash: hash,
		Role:         user.RoleGuest,
	}}
	svc := newTestService(repo)

	first, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "guest@example.com",
		Password: "correct-horse",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.Tokens.AccessToken == "" {
		t.Fatal("expected fresh access token")
	}
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	svc := newTestService(&fakeUserRepo{})

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
