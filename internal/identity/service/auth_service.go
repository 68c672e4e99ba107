package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"channel-chat/internal/security"
	"channel-chat/internal/token"
	userdomain "channel-chat/internal/user/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrUsernameTaken          = errors.New("username already taken")
	// ErrInvalidCredentials covers every login failure uniformly: unknown
	// email, wrong password. Callers learn nothing about which.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// TokenAuthority is the token lifecycle surface the auth service drives.
type TokenAuthority interface {
	Issue(userID int64) (token.Token, error)
	Revoke(secret string) bool
}

// AuthService implements register, login, and logout over the user repository
// and the token authority.
type AuthService struct {
	users  UserRepo
	hasher *security.Hasher
	tokens TokenAuthority
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, hasher *security.Hasher, tokens TokenAuthority) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user with the given username, email, and password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*userdomain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	existing, err = s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates with email/password and issues a bearer token. A failed
// credential check is always ErrInvalidCredentials; a failure to generate the
// token secret is surfaced as-is and aborts the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (token.Token, *userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return token.Token{}, nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return token.Token{}, nil, err
	}
	if user == nil {
		return token.Token{}, nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return token.Token{}, nil, ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return token.Token{}, nil, err
	}
	return tok, user, nil
}

// Logout revokes the bearer token. Idempotent; reports whether a token was
// actually revoked so handlers can log it, but an already-gone token is not an
// error.
func (s *AuthService) Logout(secret string) bool {
	return s.tokens.Revoke(secret)
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return errors.New("username must be 3-32 characters")
	}
	const pattern = `^[a-zA-Z0-9_]+$`
	ok, _ := regexp.MatchString(pattern, username)
	if !ok {
		return errors.New("username may contain only letters, digits, and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
