// Package session implements the Redis-backed server-side session store.
// It exists for browser clients that keep their credentials in a cookie
// session instead of sending Authorization headers; the authenticator
// falls back to it when no bearer token is present.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Tokens is the credential pair kept inside a session document.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// document is the stored JSON shape; tokens live under a "tokens" field so
// the session can grow other state later without a migration.
type document struct {
	Tokens Tokens `json:"tokens"`
}

// Store reads and writes session documents keyed by session id.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore builds a Store.  ttl should match the refresh-token lifetime so
// sessions cannot outlive the credentials they carry.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string { return uuid.NewString() }

// Tokens returns the token pair of a session, or nil when the session does
// not exist.
func (s *Store) Tokens(ctx context.Context, sid string) (*Tokens, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc.Tokens, nil
}

// SetTokens writes the token pair of a session, resetting its TTL.
func (s *Store) SetTokens(ctx context.Context, sid string, t Tokens) error {
	raw, err := json.Marshal(document{Tokens: t})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+sid, raw, s.ttl).Err()
}

// Clear deletes the session.
func (s *Store) Clear(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, keyPrefix+sid).Err()
}
