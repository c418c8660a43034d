package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeSession       = "session"
	PurposePasswordReset = "password_reset"
)

var ErrTokenPurpose = errors.New("token issued for a different purpose")

type Claims struct {
	UserID      uint   `json:"user_id"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a session token, used both as the browser cookie and as
// the API bearer token. fingerprint ties it to the user's current password.
func GenerateJWT(secret string, userID uint, fingerprint string, ttl time.Duration) (string, error) {
	return sign(secret, &Claims{UserID: userID, Purpose: PurposeSession, Fingerprint: fingerprint}, ttl)
}

// ValidateJWT checks signature, expiry and purpose. Comparing the fingerprint
// against the stored user is left to the caller.
func ValidateJWT(secret, tokenString string) (*Claims, error) {
	return parse(secret, tokenString, PurposeSession)
}

// GenerateResetToken issues a password reset token bound to fingerprint, which
// callers derive from the current password hash so the token dies once used.
func GenerateResetToken(secret string, userID uint, fingerprint string, ttl time.Duration) (string, error) {
	return sign(secret, &Claims{UserID: userID, Purpose: PurposePasswordReset, Fingerprint: fingerprint}, ttl)
}

func ParseResetToken(secret, tokenString string) (*Claims, error) {
	return parse(secret, tokenString, PurposePasswordReset)
}

func sign(secret string, claims *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(secret, tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Purpose != purpose {
		return nil, ErrTokenPurpose
	}

	return claims, nil
}
