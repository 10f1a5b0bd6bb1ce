package services

import (
	"errors"
	"fmt"
	"time"

	"chamado-service/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	sessionTokenType = "session"
	// SessionTTL is the lifetime of a login session.
	SessionTTL = 8 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and validates session cookies.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
}

// NewTokenService creates a TokenService. A zero ttl means SessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret must not be empty")
	}
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &TokenService{secretKey: []byte(secret), ttl: ttl}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed session token for user.
func (s *TokenService) Issue(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.Email,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
		"typ":     sessionTokenType,
		"jti":     uuid.NewString(),
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses a session token and returns its user.
func (s *TokenService) Validate(tokenStr string) (*models.User, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != sessionTokenType {
		return nil, fmt.Errorf("%w: wrong type", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &models.User{Email: email, Name: name, Picture: picture}, nil
}
