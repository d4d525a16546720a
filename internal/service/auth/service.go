package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bookshop/internal/domain"
	tokenrepo "bookshop/internal/repository/token"
	userrepo "bookshop/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles registration, login and bearer sessions.
type Service struct {
	users       userrepo.Repository
	tokens      *tokenManager
	tokenTTL    time.Duration
	passwordMin int
	logger      *log.Logger
}

func New(users userrepo.Repository, tokens tokenrepo.Repository, tokenTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if tokenTTL <= 0 {
		tokenTTL = 48 * time.Hour
	}
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens),
		tokenTTL:    tokenTTL,
		passwordMin: 6,
		logger:      logger,
	}
}

// RegisterInput captures fields expected by the signup endpoint.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an issued bearer token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// Register creates an account with the given role.
func (s *Service) Register(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.ValidationError{Field: "fullName", Message: "required"}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ValidationError{Field: "email", Message: "must be a valid address"}
	}
	if len(strings.TrimSpace(in.Password)) < s.passwordMin {
		return nil, domain.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", s.passwordMin)}
	}
	if role == "" {
		role = domain.RoleCustomer
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, domain.User{
		FullName:     name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("auth: registered user_id=%d role=%s", u.ID, u.Role)
	return u, nil
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(ctx, u.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Authenticate returns the user bound to a valid token.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// EnsureAdmin creates the admin account when no user holds that email yet.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := s.Register(ctx, RegisterInput{FullName: "Administrator", Email: email, Password: password}, domain.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TokenTTLSeconds exposes the token lifetime in seconds.
func (s *Service) TokenTTLSeconds() int {
	return int(s.tokenTTL.Seconds())
}
