package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrMissingFields      = errors.New("auth: name, email and password are required")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

type IDGenerator interface {
	NewID() string
}

// Service issues and validates session tokens and manages account
// registration. Tokens are HS256 JWTs carried in an http-only cookie.
type Service struct {
	users    user.Repository
	idGen    IDGenerator
	secret   []byte
	tokenTTL time.Duration
}

func NewService(users user.Repository, idGen IDGenerator, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		idGen:    idGen,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register creates an account and returns it with a fresh session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", user.ErrEmailTaken
	case errors.Is(err, user.ErrNotFound):
		// continue
	default:
		return nil, "", fmt.Errorf("auth: lookup email: %w", err)
	}

	account, err := user.New(s.idGen.NewID(), name, email, password)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.users.Insert(ctx, account); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}
	logging.FromContext(ctx).Info("user_registered", zap.String("user_id", account.ID))
	return account, token, nil
}

// Login checks credentials and returns the account with a fresh session
// token. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("auth: lookup email: %w", err)
	}
	if !account.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// ResolveToken validates a session token and loads the account behind it.
func (s *Service) ResolveToken(ctx context.Context, token string) (*user.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	return s.users.FindByID(ctx, sub)
}

// TokenTTL is exposed so the transport layer can align cookie expiry.
func (s *Service) TokenTTL() time.Duration { return s.tokenTTL }

func (s *Service) issueToken(account *user.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"admin": account.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
