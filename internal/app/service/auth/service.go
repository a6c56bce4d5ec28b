// Package auth owns staff logins: bcrypt password verification, JWT session
// tokens and the default admin bootstrap.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/flexfit/gymdesk/internal/models"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/config"
	"github.com/flexfit/gymdesk/pkg/dates"
	"github.com/flexfit/gymdesk/pkg/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username already exists")
)

// Default admin seeded on an empty users table. The desk is expected to
// change this password on first login.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

type Claims struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Role     types.UserRole `json:"role"`
	jwt.StandardClaims
}

type Service struct {
	store    store.UserStore
	log      *zap.SugaredLogger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func New(st store.Store, cfg *config.Config, log *zap.SugaredLogger) *Service {
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:    st,
		log:      log,
		secret:   []byte(cfg.Auth.JWTSecret),
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// Login verifies the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if err == store.ErrNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Infow("user logged in", "username", user.Username, "role", user.Role)
	return token, user, nil
}

// VerifyToken parses and validates a session token.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CreateUser registers a new staff login with a hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password string, role types.UserRole) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if err != store.ErrNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           fmt.Sprintf("U%03d", count+1),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedDate:  dates.FromTime(s.now()),
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// ChangePassword rehashes and stores a new password for the user.
func (s *Service) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	s.log.Infow("password changed", "username", username)
	return nil
}

// SeedDefaultAdmin creates the admin/admin123 account when the users table
// is empty. Run once at startup.
func (s *Service) SeedDefaultAdmin(ctx context.Context) error {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := s.CreateUser(ctx, DefaultAdminUsername, DefaultAdminPassword, types.UserRoleAdmin); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}
	s.log.Warnw("default admin account created", "username", DefaultAdminUsername)
	return nil
}
