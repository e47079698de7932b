package auth

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// ErrInvalidCredentials marks a failed login attempt
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service validates the single hardcoded credential pair and hands out the
// fixed placeholder bearer token. The token is opaque, not cryptographic.
type Service struct {
	mu       sync.Mutex
	email    string
	password string
	token    string
	user     models.User
	loggedIn bool
}

// NewService creates the auth service from config
func NewService(cfg config.AuthConfig) *Service {
	return &Service{
		email:    cfg.Email,
		password: cfg.Password,
		token:    cfg.Token,
		user: models.User{
			ID:                "user-123",
			Name:              "Alex Johnson",
			Email:             cfg.Email,
			ProfilePictureURL: "https://picsum.photos/id/1005/200/200",
			Hobbies:           []string{"Chess", "Reading", "Hiking"},
		},
	}
}

// Login checks the credential pair and returns the bearer token and profile
func (s *Service) Login(email, password string) (*models.LoginResponse, error) {
	if email != s.email || password != s.password {
		slog.Warn("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	s.loggedIn = true
	user := s.user
	s.mu.Unlock()

	slog.Info("user logged in", "email", email)
	return &models.LoginResponse{Token: s.token, User: &user}, nil
}

// Logout clears the authenticated state
func (s *Service) Logout() {
	s.mu.Lock()
	s.loggedIn = false
	s.mu.Unlock()
}

// Token returns the bearer token while authenticated, empty otherwise
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		return ""
	}
	return s.token
}

// ValidToken reports whether the presented bearer token is the fixed one
func (s *Service) ValidToken(token string) bool {
	return token != "" && token == s.token
}

// User returns the account profile
func (s *Service) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}
