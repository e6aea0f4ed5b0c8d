package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/drawit-cms/drawit-go/models"
)

// nonceAction scopes form nonces to the diagram submission form.
const nonceAction = "media-form_" + models.PluginSlug

// MintNonce issues a short-lived token bound to the submission form.
func MintNonce(secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"action": nonceAction,
		"type":   "nonce",
		"exp":    time.Now().Add(ttl).Unix(),
		"iat":    time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyNonce reports whether a submitted token is a live nonce for the
// submission form.
func VerifyNonce(secret, tokenString string) bool {
	if tokenString == "" {
		return false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	return claims["action"] == nonceAction && claims["type"] == "nonce"
}
