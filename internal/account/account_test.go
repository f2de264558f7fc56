package account

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/store/jsonstore"
	"golang.org/x/crypto/bcrypt"
)

func newRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "users.json")
	return New(jsonstore.New[model.User](p, 0o600), WithCost(bcrypt.MinCost)), p
}

func TestSignupThenLogin(t *testing.T) {
	t.Parallel()

	r, p := newRegistry(t)
	u, err := r.Signup("  alice ", "s3cret")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Expected trimmed username, got %q", u.Username)
	}

	b, _ := os.ReadFile(p)
	if strings.Contains(string(b), "s3cret") {
		t.Error("Expected password to be stored hashed")
	}

	got, err := r.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Expected alice, got %q", got.Username)
	}
}

func TestSignup_Rejections(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	if _, err := r.Signup("alice", "s3cret"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		target   error
	}{
		{"duplicate", "alice", "other1", ErrUserExists},
		{"weak password", "bob", "abc", ErrWeakPassword},
	}
	for _, tt := range tests {
		if _, err := r.Signup(tt.username, tt.password); !errors.Is(err, tt.target) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.target, err)
		}
	}
	if _, err := r.Signup("   ", "s3cret"); err == nil {
		t.Error("Expected error for blank username")
	}
	if _, err := r.Signup("bad name", "s3cret"); err == nil {
		t.Error("Expected error for username with a space")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	if _, err := r.Signup("alice", "s3cret"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := r.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := r.Login("nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestExists(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	if ok, err := r.Exists("alice"); err != nil || ok {
		t.Fatalf("Expected alice absent, got %v, %v", ok, err)
	}
	if _, err := r.Signup("alice", "s3cret"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := r.Exists("alice"); !ok {
		t.Error("Expected alice present")
	}
}

func TestLogin_UpgradesPlainTextPassword(t *testing.T) {
	t.Parallel()

	r, p := newRegistry(t)
	legacy := `[
  {
    "username": "dave",
    "password": "letmein"
  }
]`
	if err := os.WriteFile(p, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := r.Login("dave", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	b, _ := os.ReadFile(p)
	if !strings.Contains(string(b), `"letmein"`) {
		t.Error("Expected a failed login to leave the file untouched")
	}

	if _, err := r.Login("dave", "letmein"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	b, _ = os.ReadFile(p)
	if strings.Contains(string(b), "letmein") {
		t.Errorf("Expected password to be re-saved as a hash, got %s", b)
	}
	if _, err := r.Login("dave", "letmein"); err != nil {
		t.Errorf("Expected login against the new hash to succeed, got %v", err)
	}
}
