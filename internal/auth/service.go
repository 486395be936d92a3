package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Service implements admin login, token verification and account creation.
type Service struct {
	users  UserRepository
	tokens *TokenIssuer
	logger *logging.Logger
	check  func(hash, password string) bool
}

func NewService(users UserRepository, tokens *TokenIssuer, logger *logging.Logger) *Service {
	if users == nil {
		panic("auth: user repository required")
	}
	if tokens == nil {
		panic("auth: token issuer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{users: users, tokens: tokens, logger: logger, check: CheckPassword}
}

// Login checks the email and password and returns a signed access token.
// Every failure is reported as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("admin login lookup failed", "error", err)
		}
		s.check(dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if !s.check(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to the admin it was issued for.
func (s *Service) Authenticate(ctx context.Context, raw string) (*PublicUser, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, claims.Email())
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("admin token user lookup failed", "error", err)
		}
		return nil, ErrBadToken
	}
	pub := user.Public()
	return &pub, nil
}

// CreateUser registers an admin whose user name is the email.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*PublicUser, error) {
	return s.CreateAdmin(ctx, email, email, password)
}

// CreateAdmin registers an admin with an explicit user name.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*PublicUser, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if username == "" {
		username = email
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	id, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin user created", "user_id", id)
	return &PublicUser{ID: id, Name: username, Email: email}, nil
}

// HasUsers reports whether any admin exists yet.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
