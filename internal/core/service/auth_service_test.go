package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

type stubAuthRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = "id-" + user.Username
	}
	r.users[stored.Username] = cloneUser(stored)
	return cloneUser(stored), nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func newAuthSvc() *AuthService {
	return NewAuthService(newStubAuthRepo(), "secret", time.Hour, discardLogger)
}

func TestAuthService_Register_FirstUserIsAdmin(t *testing.T) {
	svc := newAuthSvc()
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if first.Role != domain.RoleAdmin {
		t.Fatalf("expected first user to be %s, got %s", domain.RoleAdmin, first.Role)
	}

	second, err := svc.Register(ctx, "bob", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if second.Role != domain.RoleUser {
		t.Fatalf("expected second user to be %s, got %s", domain.RoleUser, second.Role)
	}
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	svc := newAuthSvc()

	user, err := svc.Register(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newAuthSvc()

	_, _ = svc.Register(context.Background(), "bob", "pass")
	if _, err := svc.Register(context.Background(), "bob", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc()

	if _, err := svc.Register(context.Background(), "", "pass"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "carol", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSingleAdmin(t *testing.T) {
	svc := newAuthSvc()

	var wg sync.WaitGroup
	users := make([]*domain.User, 8)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.Register(context.Background(), string(rune('a'+i)), "pw")
			if err != nil {
				t.Errorf("register %d: %v", i, err)
				return
			}
			users[i] = u
		}(i)
	}
	wg.Wait()

	admins := 0
	for _, u := range users {
		if u != nil && u.Role == domain.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin, got %d", admins)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newAuthSvc()

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != string(domain.RoleAdmin) {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if claims["id"] != user.ID || claims["username"] != "carol" {
		t.Fatalf("unexpected identity claims: %v", claims)
	}

	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	if exp == nil || iat == nil || exp.Sub(iat.Time) != time.Hour {
		t.Fatalf("expected a one hour validity window, got iat=%v exp=%v", iat, exp)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthSvc()
	_, _ = svc.Register(context.Background(), "dave", "goodpass")

	_, _, wrongPass := svc.Login(context.Background(), "dave", "badpass")
	_, _, unknown := svc.Login(context.Background(), "ghost", "pass")

	if wrongPass != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if unknown != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestAuthService_Login_RepoError(t *testing.T) {
	repo := newStubAuthRepo()
	repo.err = errors.New("db unavailable")
	svc := NewAuthService(repo, "secret", time.Hour, discardLogger)

	_, _, err := svc.Login(context.Background(), "erin", "pw")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

func TestAuthService_Verify_RoundTrip(t *testing.T) {
	svc := newAuthSvc()
	_, _ = svc.Register(context.Background(), "frank", "pw")
	token, user, err := svc.Login(context.Background(), "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "frank" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt) {
		t.Fatalf("expiry must follow issue time: %+v", claims)
	}
}

func TestAuthService_Verify_Expired(t *testing.T) {
	svc := newAuthSvc()
	_, _ = svc.Register(context.Background(), "gina", "pw")

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Login(context.Background(), "gina", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	svc.now = time.Now

	if _, err := svc.Verify(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Verify_WrongSecret(t *testing.T) {
	svc := newAuthSvc()
	_, _ = svc.Register(context.Background(), "hank", "pw")
	token, _, _ := svc.Login(context.Background(), "hank", "pw")

	other := NewAuthService(newStubAuthRepo(), "other-secret", time.Hour, discardLogger)
	if _, err := other.Verify(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	svc := newAuthSvc()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":   "x",
		"role": string(domain.RoleAdmin),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Verify_Garbage(t *testing.T) {
	if _, err := newAuthSvc().Verify(context.Background(), "not-a-token"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewAuthService_DefaultTTL(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "secret", 0, discardLogger)
	if svc.tokenTTL != 24*time.Hour {
		t.Fatalf("expected default ttl of 24h, got %v", svc.tokenTTL)
	}
}
