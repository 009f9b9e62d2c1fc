package services

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"private-chat/auth"
	"private-chat/errors"
	"private-chat/repositories"
)

type IAuthService interface {
	VerifyCredentials(username, password string) bool
	Login(username, password string) (Token, error)
	Authenticate(token string) (string, error)
	Register(username, password string) error
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
	log            *slog.Logger
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{userRepository: repo, tokens: tokens, log: log}
}

// VerifyCredentials is the pure credential check: no token, no side effect.
func (s *AuthService) VerifyCredentials(username, password string) bool {
	if err := auth.ValidateLogin(auth.LoginRequest{Login: username, Password: password}); err != nil {
		return false
	}
	user, err := s.userRepository.GetUser(username)
	if err != nil {
		if !stdErrors.Is(err, errors.ErrUserNotFound) {
			s.log.Error("Failed to read account", "username", username, "error", err)
		}
		return false
	}
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error("Stored password hash is unreadable", "username", username, "error", err)
		return false
	}
	return match
}

// Login verifies the credentials and issues a session token.
// Every failure is reported as ErrInvalidCredentials to prevent user enumeration.
func (s *AuthService) Login(username, password string) (Token, error) {
	if !s.VerifyCredentials(username, password) {
		return "", errors.ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

// Authenticate resolves a previously issued token into its username.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Validate(token)
}

// Register hashes the password and stores a new account.
func (s *AuthService) Register(username, password string) error {
	if err := auth.ValidateLogin(auth.LoginRequest{Login: username, Password: password}); err != nil {
		return err
	}
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	_, err = s.userRepository.CreateUser(username, hashedPassword)
	return err
}

// Seed registers the given accounts, keeping the ones that already exist.
func (s *AuthService) Seed(accounts map[string]string) error {
	for username, password := range accounts {
		err := s.Register(username, password)
		switch {
		case err == nil:
			s.log.Info("Account seeded", "username", username)
		case stdErrors.Is(err, errors.ErrUserAlreadyExists):
			s.log.Debug("Account already exists", "username", username)
		default:
			return fmt.Errorf("seeding %q: %w", username, err)
		}
	}
	return nil
}
