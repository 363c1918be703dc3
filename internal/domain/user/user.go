package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/auth"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so a caller cannot enumerate registered accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrNotFound           = errors.New("user not found")
)

// User carries the hashed secret only; the plaintext is never stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Store is the persistence port for user accounts.
type Store interface {
	// Insert fails with ErrEmailTaken when the email is already registered.
	Insert(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Credential is an issued bearer token bundled with its subject.
type Credential struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"-"`
}

type Service struct {
	store  Store
	tokens *auth.TokenService
}

func NewService(store Store, tokens *auth.TokenService) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates an account and returns a fresh credential.
func (s *Service) Register(ctx context.Context, email, password string) (*Credential, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(u)
}

// Login verifies the email/password pair and returns a fresh credential.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Credential, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *Service) issue(u *User) (*Credential, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Credential{Token: token, UserID: u.ID, ExpiresAt: expiresAt}, nil
}
