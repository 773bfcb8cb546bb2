package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/repository"
)

// ErrCredentialsTaken is returned on signup when the username or email is
// already registered.
var ErrCredentialsTaken = errors.New("credentials already taken")

// ErrAccessDenied is returned for every credential or token mismatch on
// login and refresh.  The wording is deliberately identical across root
// causes so error text cannot be used to enumerate users.
var ErrAccessDenied = errors.New("access denied")

// UserStore is the credential persistence the service needs.  It stores
// and retrieves hashes; all secret comparison happens here in the service.
type UserStore interface {
	Create(ctx context.Context, username string, email *string, passwordHash, role string) (*repository.User, error)
	FindByUsername(ctx context.Context, username string) (*repository.User, error)
	FindByUsernameOrEmail(ctx context.Context, username string, email *string) (*repository.User, error)
	FindByID(ctx context.Context, id string) (*repository.User, error)
	UpdateTokenHashes(ctx context.Context, userID, accessHash, refreshHash string) error
	ClearTokenHashes(ctx context.Context, userID string) error
	AccessHash(ctx context.Context, userID string) (*string, error)
}

// Config carries the token policy.  TTLs are fixed by deployment config:
// 15 minutes for access tokens, 7 days for refresh tokens.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
}

// SignupRequest carries new-account credentials.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service owns the token lifecycle: issuance on signup/login, single-use
// rotation on refresh, revocation on logout.
type Service struct {
	users UserStore
	cfg   Config
	log   *zap.Logger
}

func NewService(users UserStore, cfg Config, log *zap.Logger) *Service {
	return &Service{users: users, cfg: cfg, log: log}
}

// Signup registers a new user with role "user" and issues its first token
// pair.  An existing username or email fails with ErrCredentialsTaken.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Tokens, error) {
	username := strings.TrimSpace(req.Username)
	var email *string
	if e := strings.ToLower(strings.TrimSpace(req.Email)); e != "" {
		email = &e
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrCredentialsTaken
	}

	hash, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, hash, "user")
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent signup for the same name.
			return nil, ErrCredentialsTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login verifies credentials and issues a fresh pair, superseding any
// previously live tokens.  Unknown username and wrong password fail
// identically.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Tokens, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrAccessDenied
	}
	return s.issue(ctx, user)
}

// Refresh rotates the token pair.  The presented refresh token must carry
// a valid signature AND match the stored hash — a signature-valid but
// superseded token is rejected because its hash no longer matches.  On
// success the stored hashes are overwritten, invalidating the token that
// was just used.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrAccessDenied
	}
	claims, err := ParseToken(s.cfg.RefreshSecret, refreshToken)
	if err != nil {
		return nil, ErrAccessDenied
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.HashedRefreshToken == nil {
		return nil, ErrAccessDenied
	}
	if *user.HashedRefreshToken != HashToken(refreshToken) {
		return nil, ErrAccessDenied
	}
	return s.issue(ctx, user)
}

// Logout clears both stored token hashes unconditionally.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.users.ClearTokenHashes(ctx, userID)
}

// ValidateAccessToken cross-checks a signature-verified access token
// against the stored hash for its subject.  False covers users that
// logged out and tokens superseded by a later login or refresh.
func (s *Service) ValidateAccessToken(ctx context.Context, userID, accessToken string) bool {
	stored, err := s.users.AccessHash(ctx, userID)
	if err != nil || stored == nil {
		return false
	}
	return *stored == HashToken(accessToken)
}

// issue mints a new access/refresh pair and persists both hashes in one
// atomic update before returning the raw tokens.
func (s *Service) issue(ctx context.Context, user *repository.User) (*Tokens, error) {
	access, err := SignToken(s.cfg.AccessSecret, user.ID, user.Username, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := SignToken(s.cfg.RefreshSecret, user.ID, user.Username, user.Role, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := s.users.UpdateTokenHashes(ctx, user.ID, HashToken(access), HashToken(refresh)); err != nil {
		return nil, fmt.Errorf("persist token hashes: %w", err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
