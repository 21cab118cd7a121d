package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/httpx"
)

// Repository defines credential-store operations for the auth module. The
// backing store must guarantee atomic single-row writes; rotation correctness
// depends on it.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByIdentifier looks a user up by username or email. The identifier
	// is expected to be lower-cased by the caller.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	// SetRefreshToken overwrites the stored refresh token unconditionally,
	// forcibly invalidating any previous session's token.
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error
	// RotateRefreshToken swaps old for new only when old is still the stored
	// value. Returns false when the compare-and-swap lost, so a concurrent
	// rotation race fails closed.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string) (bool, error)
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url, password_hash, COALESCE(refresh_token, ''), created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new user record. Duplicate username or email surfaces as
// httpx.ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.FullName, user.AvatarURL, user.CoverImageURL, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByIdentifier fetches a user by username or email.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, identifier))
}

// SetRefreshToken overwrites the stored refresh token.
func (r *PGRepository) SetRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`, userID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// RotateRefreshToken performs the single-use rotation as one atomic
// compare-and-swap on the user row.
func (r *PGRepository) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = now() WHERE id = $1 AND refresh_token = $2`,
		userID, oldToken, newToken)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshToken removes the stored refresh token. Clearing an already
// cleared token is not an error.
func (r *PGRepository) ClearRefreshToken(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1`, userID)
	return err
}

// UpdatePasswordHash stores a new password hash.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *PGRepository) scanOne(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.AvatarURL, &user.CoverImageURL, &user.PasswordHash, &user.RefreshToken,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
