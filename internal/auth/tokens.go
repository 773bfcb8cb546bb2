// Package auth implements token issuance and the authentication flows.
// Access and refresh tokens are independent HS256 JWTs signed with
// distinct secrets; only SHA-256 hashes of the signed tokens are ever
// persisted, the raw credentials go back to the client alone.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed tokens, bad signatures, expiry and
// missing subject claims.  Callers translate it into their own taxonomy.
var ErrInvalidToken = errors.New("invalid token")

// Tokens is the signed pair returned to clients.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims is the decoded identity a verified token carries.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

// SignToken builds and signs an HS256 JWT carrying subject id, username,
// role, issued-at and expiry.  The jti claim makes every signed token
// unique even when two are minted within the same second, so rotation
// always produces a distinct credential.
func SignToken(secret, userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"jti":      uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a token against the
// given secret and extracts its identity claims.  A token without a
// subject is rejected.
func ParseToken(secret, raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with a different algorithm family.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	var c Claims
	if v, ok := claims["sub"].(string); ok {
		c.UserID = v
	}
	if v, ok := claims["username"].(string); ok {
		c.Username = v
	}
	if v, ok := claims["role"].(string); ok {
		c.Role = v
	}
	if c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

// HashToken returns the SHA-256 hash of a signed token as a hex string.
// Storing only hashes prevents stolen database rows from being replayed
// as live credentials.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
