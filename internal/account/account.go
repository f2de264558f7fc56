// Package account is the user registry: sign up and log in against a JSON
// file of users with bcrypt password hashes.
package account

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 4

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
)

type Store interface {
	Load() ([]model.User, error)
	Save([]model.User) error
}

type Registry struct {
	store Store
	cost  int
	now   func() time.Time
	log   *zap.Logger
}

type Option func(*Registry)

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(r *Registry) { r.cost = cost }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Signup registers username. The users file is re-read first so the
// duplicate check sees the latest state on disk.
func (r *Registry) Signup(username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return model.User{}, err
	}
	if len(password) < minPasswordLen {
		return model.User{}, ErrWeakPassword
	}

	users, err := r.store.Load()
	if err != nil {
		return model.User{}, fmt.Errorf("load users: %w", err)
	}
	if slices.ContainsFunc(users, func(u model.User) bool { return u.Username == username }) {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{Username: username, Password: string(hash), CreatedAt: r.now().UTC()}
	if err := validation.Struct(u); err != nil {
		return model.User{}, err
	}
	if err := r.store.Save(append(users, u)); err != nil {
		return model.User{}, fmt.Errorf("save users: %w", err)
	}
	r.log.Debug("user registered", zap.String("username", username))
	return u, nil
}

// Login checks the password. Unknown users and wrong passwords give the
// same error. A stored password that is not a bcrypt hash is compared as
// plain text once and replaced by its hash on success.
func (r *Registry) Login(username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	users, err := r.store.Load()
	if err != nil {
		return model.User{}, fmt.Errorf("load users: %w", err)
	}
	i := slices.IndexFunc(users, func(u model.User) bool { return u.Username == username })
	if i < 0 {
		r.log.Debug("login rejected", zap.String("username", username))
		return model.User{}, ErrInvalidCredentials
	}
	u := users[i]

	if _, costErr := bcrypt.Cost([]byte(u.Password)); costErr != nil {
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			r.log.Debug("login rejected", zap.String("username", username))
			return model.User{}, ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
		if err != nil {
			return model.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.Password = string(hash)
		users[i] = u
		if err := r.store.Save(users); err != nil {
			return model.User{}, fmt.Errorf("save users: %w", err)
		}
		r.log.Info("upgraded plain-text password", zap.String("username", username))
		return u, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		r.log.Debug("login rejected", zap.String("username", username))
		return model.User{}, ErrInvalidCredentials
	}
	r.log.Debug("user logged in", zap.String("username", username))
	return u, nil
}

// Exists reports whether username is registered.
func (r *Registry) Exists(username string) (bool, error) {
	users, err := r.store.Load()
	if err != nil {
		return false, fmt.Errorf("load users: %w", err)
	}
	return slices.ContainsFunc(users, func(u model.User) bool { return u.Username == username }), nil
}
