package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session id.
const SessionCookieName = "clinic_session"

var (
	sessionSecretMu sync.RWMutex
	sessionSecret   []byte
)

// SetSessionSecret sets the HMAC key used to sign session cookies.
func SetSessionSecret(secret string) {
	sessionSecretMu.Lock()
	defer sessionSecretMu.Unlock()
	sessionSecret = []byte(secret)
}

// GetSessionSecretByte returns a copy of the signing key.
func GetSessionSecretByte() []byte {
	sessionSecretMu.RLock()
	defer sessionSecretMu.RUnlock()
	return append([]byte(nil), sessionSecret...)
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignSessionID wraps a session id in an HS256 token for the cookie. A
// positive ttl sets the token expiry.
func SignSessionID(sid string, ttl time.Duration) (string, error) {
	secret := GetSessionSecretByte()
	if len(secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	claims := sessionClaims{SID: sid}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken verifies a cookie value and returns the session id.
func ParseSessionToken(raw string) (string, error) {
	secret := GetSessionSecretByte()
	if len(secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if claims.SID == "" {
		return "", errors.New("invalid session token: missing sid")
	}
	return claims.SID, nil
}
