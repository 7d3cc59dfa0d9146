package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"finbook/internal/auth"
	"finbook/internal/core"
)

// Usernames start with a letter and continue with letters, digits or
// underscores.
var usernameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

const minPasswordLen = 4

// AuthService registers users and trades credentials for a session token.
// Everything downstream trusts the user id it resolves.
type AuthService struct {
	store  UserStore
	tokens *auth.TokenManager // optional; CLI sessions don't need tokens
}

func NewAuthService(store UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

// Register validates the credentials, hashes the password and creates the
// user. A duplicate username surfaces as core.ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if !usernameRe.MatchString(username) {
		return core.User{}, core.ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return core.User{}, core.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Authenticate verifies a username/password pair and returns the user with
// a signed session token. Unknown user and wrong password are the same
// core.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (core.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.User{}, "", core.ErrInvalidCredentials
		}
		return core.User{}, "", fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, "", core.ErrInvalidCredentials
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Generate(user.ID)
		if err != nil {
			return core.User{}, "", fmt.Errorf("issue session token: %w", err)
		}
	}

	slog.InfoContext(ctx, "User authenticated", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}
