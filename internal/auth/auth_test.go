package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

// memUsers is a minimal UserStorage for tests.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byMail: map[string]*models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[user.Mail]; ok {
		return storage.ErrConflict
	}
	m.nextID++
	user.ID = m.nextID
	m.byMail[user.Mail] = user
	return nil
}

func (m *memUsers) GetUserByMail(_ context.Context, mail string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byMail[mail]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers(), bcrypt.MinCost)

	user, err := a.Register(ctx, Registration{Name: "Alice", Surname: "Smith", Mail: " Alice@Example.com "}, "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Mail != "alice@example.com" {
		t.Errorf("Mail = %q, want normalized", user.Mail)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}

	tests := []struct {
		name     string
		mail     string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "password123", nil},
		{"mail is case-insensitive", "ALICE@example.com", "password123", nil},
		{"wrong password", "alice@example.com", "password124", ErrInvalidCredentials},
		{"unknown user", "bob@example.com", "password123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(ctx, tt.mail, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.ID != user.ID {
				t.Errorf("Authenticate() user = %d, want %d", got.ID, user.ID)
			}
		})
	}

	_, err = a.Register(ctx, Registration{Name: "A", Surname: "B", Mail: "alice@example.com"}, "password123")
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailExists", err)
	}

	_, err = a.Register(ctx, Registration{Mail: "short@example.com"}, "short")
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak Register() error = %v, want ErrWeakPassword", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager(testSecret, 15*time.Minute, 24*time.Hour)
	user := &models.User{ID: 42, Mail: "alice@example.com", Admin: true}

	access, err := m.GenerateAccess(user)
	if err != nil {
		t.Fatalf("GenerateAccess failed: %v", err)
	}
	claims, err := m.Validate(access, TokenAccess)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != 42 || claims.Mail != "alice@example.com" || !claims.Admin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	refresh, err := m.GenerateRefresh(user)
	if err != nil {
		t.Fatalf("GenerateRefresh failed: %v", err)
	}
	if refresh.ID == "" {
		t.Error("expected refresh token id")
	}
	rc, err := m.Validate(refresh.Token, TokenRefresh)
	if err != nil {
		t.Fatalf("Validate refresh failed: %v", err)
	}
	if rc.ID != refresh.ID {
		t.Errorf("jti = %q, want %q", rc.ID, refresh.ID)
	}

	if _, err := m.Validate(refresh.Token, TokenAccess); !errors.Is(err, ErrWrongType) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := m.Validate("", TokenAccess); !errors.Is(err, ErrMissingToken) {
		t.Errorf("empty token error = %v", err)
	}
	if _, err := m.Validate("not.a.token", TokenAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v", err)
	}

	other := NewJWTManager("another-secret-key-with-32-characters!!", time.Minute, time.Hour)
	if _, err := other.Validate(access, TokenAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another key accepted: %v", err)
	}
}

func TestJWTManagerExpiry(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute, time.Hour)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccess(&models.User{ID: 1})
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Validate(token, TokenAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}
