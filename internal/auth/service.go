// Package auth provides registration, login and session tokens. Sessions are
// stateless JWTs; logout revokes the token id in Redis for the remainder of
// its lifetime.
package auth

import (
	"errors"
	"time"

	"smartcomplaint/backend/internal/config"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/storage"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Failures surfaced to API clients; messages go into the response envelope
// verbatim.
var (
	ErrFieldsRequired     = errors.New("All fields are required")
	ErrEmailExists        = errors.New("Email already exists")
	ErrUsernameExists     = errors.New("Username already exists")
	ErrInvalidCredentials = errors.New("Invalid email/username or password")
	ErrInvalidToken       = errors.New("Invalid token or expired")
)

// Claims are the JWT session claims. The jti (RegisteredClaims.ID) is the
// revocation key.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Service implements the identity operations.
type Service struct {
	Storage storage.Storage
	Fanout  *notify.Fanout
	Log     *zap.SugaredLogger
	Secret  []byte
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(s storage.Storage, fanout *notify.Fanout, log *zap.SugaredLogger, secret string) *Service {
	return &Service{Storage: s, Fanout: fanout, Log: log, Secret: []byte(secret)}
}

// Register creates a user, fires the welcome fanout, and returns the user
// together with a session token (registration logs the user in).
func (s *Service) Register(username, email, password string) (*models.User, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", ErrFieldsRequired
	}

	if existing, err := s.Storage.GetUserByEmail(email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailExists
	}
	if existing, err := s.Storage.GetUserByUsername(username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrUsernameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Storage.CreateUser(user); err != nil {
		return nil, "", err
	}

	s.Fanout.Registered(user)

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email or username. The identifier is looked up as
// an email first, then as a username.
func (s *Service) Login(identifier, password string) (*models.User, string, error) {
	user, err := s.Storage.GetUserByEmail(identifier)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user, err = s.Storage.GetUserByUsername(identifier)
		if err != nil {
			return nil, "", err
		}
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	s.Fanout.LoginSucceeded(user)

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the session token until it would have expired anyway.
func (s *Service) Logout(claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.Storage.RevokeToken(claims.ID, ttl); err != nil {
		s.Log.Errorf("ERROR: Failed to revoke token %s: %v", claims.ID, err)
		return err
	}
	return nil
}

// ParseToken validates a session token and rejects revoked ones.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	revoked, err := s.Storage.IsTokenRevoked(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}
