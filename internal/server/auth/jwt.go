// Package auth holds the credential primitives used by the account
// managers: the bearer-token issuer and the password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is carried by the token issued at sign-in.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// RefreshClaims is carried by the token issued when a session is
// refreshed. It is deliberately narrower than SessionClaims.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
}

// TokenIssuer signs and parses HS256 bearer tokens with a shared secret and
// a fixed lifetime.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime stamped on every issued token.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// IssueSessionToken signs {userId, email, role}.
func (i *TokenIssuer) IssueSessionToken(userID, email, role string) (string, error) {
	return i.sign(&SessionClaims{
		RegisteredClaims: i.registered(userID),
		UserID:           userID,
		Email:            email,
		Role:             role,
	})
}

// IssueRefreshToken signs {userId, sessionId}.
func (i *TokenIssuer) IssueRefreshToken(userID, sessionID string) (string, error) {
	return i.sign(&RefreshClaims{
		RegisteredClaims: i.registered(userID),
		UserID:           userID,
		SessionID:        sessionID,
	})
}

// ParseSessionToken validates signature and expiry and returns sign-in claims.
func (i *TokenIssuer) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken validates signature and expiry and returns refresh claims.
func (i *TokenIssuer) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// UserID extracts the user id from either token shape.
func (i *TokenIssuer) UserID(tokenString string) (string, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (i *TokenIssuer) registered(subject string) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		ID:        uuid.NewString(),
	}
}

func (i *TokenIssuer) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
