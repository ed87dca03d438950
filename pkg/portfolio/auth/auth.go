// Package auth issues and verifies bearer tokens for the portfolio admin.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

// DefaultTokenTTL is the token lifetime when none is configured.
const DefaultTokenTTL = 15 * time.Minute

// SignupRequest creates an admin account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful signup or login.
type Session struct {
	Token string          `json:"token"`
	User  *portfolio.User `json:"user"`
}

// Authenticator manages admin accounts and their tokens.
type Authenticator struct {
	users  portfolio.UserRepository
	jwt    *jwtauth.JWTAuth
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenTTL sets the token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithClock sets the time source used for issuing tokens and stamping users.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = logger }
}

// New returns an Authenticator signing HS256 tokens with secret.
func New(users portfolio.UserRepository, secret string, opts ...Option) (*Authenticator, error) {
	if users == nil {
		return nil, errors.New("user repository is required")
	}
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	a := &Authenticator{
		users:  users,
		jwt:    jwtauth.New("HS256", []byte(secret), nil),
		ttl:    DefaultTokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Register creates a user without issuing a token.
func (a *Authenticator) Register(ctx context.Context, req SignupRequest) (*portfolio.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := portfolio.Validate(req); err != nil {
		return nil, err
	}

	_, err := a.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, portfolio.ErrEmailTaken
	}
	if !errors.Is(err, portfolio.ErrNotFound) {
		return nil, err
	}

	hash, salt, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	user := &portfolio.User{
		ID:           a.newID(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Signup creates a user and returns a token for it.
func (a *Authenticator) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	user, err := a.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.session(user)
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := portfolio.Validate(req); err != nil {
		return nil, err
	}
	user, err := a.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, portfolio.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(req.Password, user.PasswordHash, user.Salt) {
		return nil, ErrInvalidCredentials
	}
	return a.session(user)
}

func (a *Authenticator) session(user *portfolio.User) (*Session, error) {
	token, err := a.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Issue signs a token for user.
func (a *Authenticator) Issue(user *portfolio.User) (string, error) {
	now := a.now()
	claims := map[string]interface{}{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	}
	_, token, err := a.jwt.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and loads its user.
func (a *Authenticator) Verify(ctx context.Context, token string) (*portfolio.User, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	parsed, err := jwtauth.VerifyToken(a.jwt, token)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	subject := parsed.Subject()
	if subject == "" {
		return nil, ErrTokenInvalid
	}

	user, err := a.users.GetUser(ctx, subject)
	if errors.Is(err, portfolio.ErrNotFound) {
		return nil, ErrSubjectGone
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
