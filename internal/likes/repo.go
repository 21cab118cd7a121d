package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/db"
	"github.com/videostream/videostream/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for likes. Toggle
// idempotence under double-submit comes from the partial unique indexes on
// (liked_by, target).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Toggle flips the like state and reports the resulting state. Insert and
// the conflicting delete run in one transaction so a double-submit cannot
// observe the half-toggled row. A missing target surfaces as
// httpx.ErrNotFound via the foreign key.
func (r *Repository) Toggle(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error) {
	column := kind.column()
	if column == "" {
		return false, fmt.Errorf("%w: unknown like target", httpx.ErrValidation)
	}

	var liked bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO likes (id, liked_by, %s) VALUES ($1, $2, $3)
			ON CONFLICT (liked_by, %s) WHERE %s IS NOT NULL DO NOTHING`,
			column, column, column), uuid.New(), userID, targetID)
		if err != nil {
			return fmt.Errorf("likes: toggle insert: %w", err)
		}
		if tag.RowsAffected() > 0 {
			liked = true
			return nil
		}

		// Row already existed; the toggle removes it.
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`DELETE FROM likes WHERE liked_by = $1 AND %s = $2`, column), userID, targetID); err != nil {
			return fmt.Errorf("likes: toggle delete: %w", err)
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, httpx.ErrNotFound
		}
		return false, err
	}
	return liked, nil
}

// Count returns the number of likes on a target.
func (r *Repository) Count(ctx context.Context, kind TargetKind, targetID uuid.UUID) (int64, error) {
	column := kind.column()
	if column == "" {
		return 0, fmt.Errorf("%w: unknown like target", httpx.ErrValidation)
	}
	var n int64
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM likes WHERE %s = $1`, column), targetID).Scan(&n)
	return n, err
}

// IsLiked reports whether the user has liked the target.
func (r *Repository) IsLiked(ctx context.Context, userID uuid.UUID, kind TargetKind, targetID uuid.UUID) (bool, error) {
	column := kind.column()
	if column == "" {
		return false, fmt.Errorf("%w: unknown like target", httpx.ErrValidation)
	}
	var liked bool
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM likes WHERE liked_by = $1 AND %s = $2)`, column),
		userID, targetID).Scan(&liked)
	return liked, err
}

// LikedVideos returns the published videos the user has liked, most recently
// liked first.
func (r *Repository) LikedVideos(ctx context.Context, userID uuid.UUID) ([]LikedVideo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.video_id, v.title, v.thumbnail_url, u.username, l.created_at
		FROM likes l
		JOIN videos v ON v.id = l.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE l.liked_by = $1 AND l.video_id IS NOT NULL AND v.is_published
		ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("likes: liked videos: %w", err)
	}
	defer rows.Close()

	var items []LikedVideo
	for rows.Next() {
		var item LikedVideo
		if err := rows.Scan(&item.VideoID, &item.Title, &item.ThumbnailURL,
			&item.OwnerUsername, &item.LikedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
