package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, username, email, full_name, avatar_url, cover_image_url, created_at, updated_at`

// GetProfile fetches a profile by user id.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id))
}

// GetProfileByUsername fetches a profile by its lower-cased username.
func (r *Repository) GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM users WHERE username = $1`, strings.ToLower(username)))
}

// UpdateProfile updates the mutable account fields. Email uniqueness
// violations surface as httpx.ErrDuplicate.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET full_name = $2, email = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, fullName, strings.ToLower(email))
	profile, err := r.scanOne(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return profile, nil
}

// UpdateAvatar stores a new avatar URL.
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*Profile, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE users SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, url))
}

// UpdateCoverImage stores a new cover image URL.
func (r *Repository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) (*Profile, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		UPDATE users SET cover_image_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, url))
}

// CountSubscribers returns how many users subscribe to the channel.
func (r *Repository) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&n)
	return n, err
}

// CountSubscriptions returns how many channels the user subscribes to.
func (r *Repository) CountSubscriptions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, userID).Scan(&n)
	return n, err
}

// IsSubscribed reports whether the viewer subscribes to the channel.
func (r *Repository) IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID).Scan(&exists)
	return exists, err
}

// WatchHistory returns the user's watched videos, most recent first.
func (r *Repository) WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT wh.video_id, v.title, v.thumbnail_url, u.username, wh.watched_at
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE wh.user_id = $1
		ORDER BY wh.watched_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WatchEntry
	for rows.Next() {
		var entry WatchEntry
		if err := rows.Scan(&entry.VideoID, &entry.Title, &entry.ThumbnailURL, &entry.OwnerUsername, &entry.WatchedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repository) scanOne(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.FullName, &p.AvatarURL, &p.CoverImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
