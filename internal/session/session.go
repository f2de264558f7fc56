// Package session remembers who is logged in between CLI invocations.
// The session is a signed JWT kept in the config directory; TADA_SESSION
// overrides it for scripts.
package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionFileName = "session.json"
	keyFileName     = "session.key"
	issuer          = "tada"

	// EnvToken carries a session token directly, bypassing the file.
	EnvToken = "TADA_SESSION"
)

var (
	ErrExpired      = errors.New("session expired, log in again")
	ErrInvalidToken = errors.New("invalid session token")
)

// Info describes the active session.
type Info struct {
	Username  string
	Source    string // "env" | "file"
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

type fileData struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions manages the session and signing key files under Dir.
type Sessions struct {
	Dir string
	TTL time.Duration // zero means tokens never expire

	now    func() time.Time
	getenv func(string) string
}

type Option func(*Sessions)

func WithClock(now func() time.Time) Option {
	return func(s *Sessions) { s.now = now }
}

// WithEnv replaces os.Getenv for the TADA_SESSION lookup.
func WithEnv(getenv func(string) string) Option {
	return func(s *Sessions) { s.getenv = getenv }
}

func New(dir string, ttl time.Duration, opts ...Option) *Sessions {
	s := &Sessions{Dir: dir, TTL: ttl, now: time.Now, getenv: os.Getenv}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Sessions) sessionPath() string { return filepath.Join(s.Dir, sessionFileName) }
func (s *Sessions) keyPath() string     { return filepath.Join(s.Dir, keyFileName) }

// Current returns the active session, or nil when nobody is logged in.
func (s *Sessions) Current() (*Info, error) {
	if env := strings.TrimSpace(s.getenv(EnvToken)); env != "" {
		info, err := s.Parse(stripBearer(env))
		if err != nil {
			return nil, err
		}
		info.Source = "env"
		return info, nil
	}

	b, err := os.ReadFile(s.sessionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var fd fileData
	if err := json.Unmarshal(b, &fd); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	info, err := s.Parse(fd.Token)
	if err != nil {
		return nil, err
	}
	info.Source = "file"
	return info, nil
}

// Save issues a token for username and writes it with 0600 permissions.
func (s *Sessions) Save(username string) (*Info, error) {
	token, err := s.Issue(username)
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(fileData{Token: token, CreatedAt: s.now().UTC()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(), b, 0o600); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	info, err := s.Parse(token)
	if err != nil {
		return nil, err
	}
	info.Source = "file"
	return info, nil
}

// Clear removes the session file. Missing is fine.
func (s *Sessions) Clear() error {
	if err := os.Remove(s.sessionPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Issue signs a token for username.
func (s *Sessions) Issue(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("empty username")
	}
	key, err := s.key()
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.TTL))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Parse verifies the signature and expiry of token.
func (s *Sessions) Parse(token string) (*Info, error) {
	key, err := s.key()
	if err != nil {
		return nil, err
	}
	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	info := &Info{Username: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info, nil
}

// key loads the HMAC key, creating Dir (0700) and a fresh random key on
// first use.
func (s *Sessions) key() ([]byte, error) {
	b, err := os.ReadFile(s.keyPath())
	if err == nil && len(b) >= 32 {
		return b, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(s.keyPath(), key, 0o600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
