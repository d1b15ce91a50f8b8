package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "admin-console"

// SessionClaims represents the claims in a console session token
type SessionClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionTokenManager handles console session token generation and validation
type SessionTokenManager struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewSessionTokenManager creates a new session token manager
func NewSessionTokenManager(secret string, expiry time.Duration) *SessionTokenManager {
	return &SessionTokenManager{
		secretKey: []byte(secret),
		expiry:    expiry,
		now:       time.Now,
	}
}

// GenerateSessionToken generates a signed token for a console session
func (m *SessionTokenManager) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	now := m.now()
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateSessionToken validates a session token and returns its claims
func (m *SessionTokenManager) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil || sessionID != claims.SessionID {
		return nil, errors.New("invalid session ID in token")
	}

	return claims, nil
}

// NeedsRefresh reports whether less than half of the token lifetime is left.
// Active sessions get a new token so they are only cut off when idle.
func (m *SessionTokenManager) NeedsRefresh(claims *SessionClaims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(m.now()) < m.expiry/2
}

// Expiry returns how long issued tokens stay valid
func (m *SessionTokenManager) Expiry() time.Duration {
	return m.expiry
}
