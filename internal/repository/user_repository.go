package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User mirrors the 'users' table.  The two token hash columns hold the
// currently live access/refresh pair; NULL means no live token of that
// kind.  The repository only stores and retrieves hashes — all secret
// comparison happens one level up, keeping the hash algorithm swappable.
type User struct {
	ID                 string
	Username           string
	Email              *string
	PasswordHash       string
	Role               string
	HashedAccessToken  *string
	HashedRefreshToken *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserRepo is the single source of truth for user identity and live
// session-token hashes.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,username,email,password_hash,role,hashed_access_token,hashed_refresh_token,created_at,updated_at"

// Create inserts a new user row and returns it.
func (r *UserRepo) Create(ctx context.Context, username string, email *string, passwordHash, role string) (*User, error) {
	u := &User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, role) VALUES (?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// FindByUsername fetches a user by username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1", username)
}

// FindByUsernameOrEmail fetches the first user matching either field.  A nil
// email restricts the lookup to the username.
func (r *UserRepo) FindByUsernameOrEmail(ctx context.Context, username string, email *string) (*User, error) {
	if email == nil {
		return r.FindByUsername(ctx, username)
	}
	return r.findOne(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? OR email=? LIMIT 1", username, *email)
}

// FindByID fetches a user by internal id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
}

// UpdateTokenHashes replaces both live token hashes in one statement so a
// rotation can never leave a half-updated pair behind.
func (r *UserRepo) UpdateTokenHashes(ctx context.Context, userID, accessHash, refreshHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET hashed_access_token=?, hashed_refresh_token=?, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		accessHash, refreshHash, userID)
	return err
}

// ClearTokenHashes drops both live token hashes (logout).
func (r *UserRepo) ClearTokenHashes(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET hashed_access_token=NULL, hashed_refresh_token=NULL, updated_at=CURRENT_TIMESTAMP WHERE id=?",
		userID)
	return err
}

// AccessHash returns the stored access-token hash, or nil when the user has
// no live access token.
func (r *UserRepo) AccessHash(ctx context.Context, userID string) (*string, error) {
	var h sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT hashed_access_token FROM users WHERE id=? LIMIT 1", userID).Scan(&h)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !h.Valid {
		return nil, nil
	}
	return &h.String, nil
}

func (r *UserRepo) findOne(ctx context.Context, q string, args ...any) (*User, error) {
	var (
		u           User
		email       sql.NullString
		accessHash  sql.NullString
		refreshHash sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(
		&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role,
		&accessHash, &refreshHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if email.Valid {
		u.Email = &email.String
	}
	if accessHash.Valid {
		u.HashedAccessToken = &accessHash.String
	}
	if refreshHash.Valid {
		u.HashedRefreshToken = &refreshHash.String
	}
	return &u, nil
}
