package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mingxw/aerochat/backend/internal/config"
	"github.com/mingxw/aerochat/backend/internal/model/session"
	"github.com/mingxw/aerochat/backend/internal/model/user"
	"github.com/mingxw/aerochat/backend/internal/store"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service registers accounts and issues the signed bearer tokens that back
// request sessions.
type Service struct {
	users    store.UserStore
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewService creates the auth service. When no secret is configured a random
// per-process one is generated, which invalidates outstanding tokens on
// every restart.
func NewService(users store.UserStore, cfg config.AuthConfig, logger *zap.Logger) (*Service, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("JWT_SECRET not set, using a random per-process secret; sessions will not survive restarts")
	}

	return &Service{
		users:    users,
		secret:   secret,
		tokenTTL: cfg.TokenTTL,
		logger:   logger,
	}, nil
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, string, error) {
	email = normalizeEmail(email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return user.User{}, "", fmt.Errorf("check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return user.User{}, "", ErrEmailTaken
		}
		return user.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and signs the user in.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, string, error) {
	email = normalizeEmail(email)

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, "", ErrInvalidCredentials
		}
		return user.User{}, "", fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// IssueToken creates a signed token carrying the user's identity.
func (s *Service) IssueToken(u user.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": u.ID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// SessionFromToken verifies a bearer token and resolves the session it
// represents, loading the user it names.
func (s *Service) SessionFromToken(ctx context.Context, tokenString string) (*session.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return &session.Session{User: &u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
