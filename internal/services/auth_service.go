package services

import (
	"time"

	"breeze-chat/config"
	"breeze-chat/internal/router"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and parses the connection tokens the transport uses to
// establish an identity, and owns password hashing.
type AuthService struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	bcryptCost int
}

func NewAuthService(cfg *config.Config) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.JWTExpiryHours) * time.Hour,
		bcryptCost: cost,
	}
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ParseToken(token string) (uuid.UUID, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, breeze_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, breeze_errors.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, breeze_errors.ErrUnauthorized
	}
	return id, nil
}

// Middleware sets the authenticated identity from a per-frame token param.
// An absent or bad token leaves the identity slot empty; the per-handler
// guard decides whether that matters.
func (s *AuthService) Middleware() router.Middleware {
	return func(c *router.Context) {
		token := c.Param("token")
		if token == "" {
			return
		}
		if id, err := s.ParseToken(token); err == nil {
			c.SetUser(id)
		}
	}
}

// HashPassword derives the stored credential. bcrypt generates and embeds
// the salt for the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (s *AuthService) CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
