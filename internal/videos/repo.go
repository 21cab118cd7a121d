package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Repository provides PostgreSQL backed persistence for videos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const videoColumns = `v.id, v.owner_id, v.title, v.description, v.duration_seconds,
	v.video_key, v.thumbnail_url, v.views, v.is_published, v.is_ready, v.created_at, v.updated_at`

const ownerColumns = `u.username, u.full_name, u.avatar_url`

// sortColumns whitelists the ORDER BY targets; anything else falls back to
// created_at.
var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration_seconds",
	"title":     "v.title",
}

// Create inserts a new video row.
func (r *Repository) Create(ctx context.Context, v *Video) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (id, owner_id, title, description, duration_seconds,
			video_key, thumbnail_url, is_published, is_ready)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.OwnerID, v.Title, v.Description, v.DurationSeconds,
		v.VideoKey, v.ThumbnailURL, v.IsPublished, v.IsReady)
	if err != nil {
		return fmt.Errorf("videos: insert: %w", err)
	}
	return nil
}

// GetByID fetches a video with its uploader.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*VideoWithOwner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+videoColumns+`, `+ownerColumns+`
		FROM videos v JOIN users u ON u.id = v.owner_id
		WHERE v.id = $1`, id)
	return scanVideoWithOwner(row)
}

// List returns published videos matching the filter, newest first unless the
// filter says otherwise.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]VideoWithOwner, int, error) {
	where := []string{"v.is_published", "v.is_ready"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos v WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("videos: count: %w", err)
	}

	page := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM videos v JOIN users u ON u.id = v.owner_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		videoColumns, ownerColumns, cond, orderClause(filter), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("videos: list: %w", err)
	}
	defer rows.Close()
	items, err := collectVideos(rows)
	return items, total, err
}

// ListByOwner returns one page of a user's videos, drafts included, newest
// first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page shared.Pagination) ([]VideoWithOwner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos v WHERE v.owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("videos: count by owner: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+videoColumns+`, `+ownerColumns+`
		FROM videos v JOIN users u ON u.id = v.owner_id
		WHERE v.owner_id = $1
		ORDER BY v.created_at DESC
		LIMIT $2 OFFSET $3`, ownerID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("videos: list by owner: %w", err)
	}
	defer rows.Close()
	items, err := collectVideos(rows)
	return items, total, err
}

// Update changes title, description and optionally the thumbnail.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, thumbnailURL string) (*VideoWithOwner, error) {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos SET
			title = $2,
			description = $3,
			thumbnail_url = COALESCE(NULLIF($4, ''), thumbnail_url),
			updated_at = now()
		WHERE id = $1`, id, title, description, thumbnailURL)
	if err != nil {
		return nil, fmt.Errorf("videos: update: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes the video row; likes, comments and watch history cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("videos: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// TogglePublish flips the publish flag and returns the new state.
func (r *Repository) TogglePublish(ctx context.Context, id uuid.UUID) (bool, error) {
	var published bool
	err := r.pool.QueryRow(ctx, `
		UPDATE videos SET is_published = NOT is_published, updated_at = now()
		WHERE id = $1
		RETURNING is_published`, id).Scan(&published)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, httpx.ErrNotFound
	}
	return published, err
}

// MarkReady records the probed duration and flips the readiness flag. Called
// by the background probe job.
func (r *Repository) MarkReady(ctx context.Context, id uuid.UUID, durationSeconds float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE videos
		SET is_ready = TRUE,
		    duration_seconds = CASE WHEN $2 > 0 THEN $2 ELSE duration_seconds END,
		    updated_at = now()
		WHERE id = $1`, id, durationSeconds)
	if err != nil {
		return fmt.Errorf("videos: mark ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// AddViews atomically adds the flushed counter delta to the stored view
// count.
func (r *Repository) AddViews(ctx context.Context, id uuid.UUID, delta int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET views = views + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("videos: add views: %w", err)
	}
	return nil
}

// Exists reports whether the video row is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// UpsertWatch records or refreshes a watch-history entry.
func (r *Repository) UpsertWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()`,
		userID, videoID)
	if err != nil {
		return fmt.Errorf("videos: upsert watch: %w", err)
	}
	return nil
}

func orderClause(filter ListFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "v.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortType, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

func collectVideos(rows pgx.Rows) ([]VideoWithOwner, error) {
	var items []VideoWithOwner
	for rows.Next() {
		item, err := scanVideoWithOwnerFrom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanVideoWithOwner(row pgx.Row) (*VideoWithOwner, error) {
	item, err := scanVideoWithOwnerFrom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func scanVideoWithOwnerFrom(row pgx.Row) (*VideoWithOwner, error) {
	var item VideoWithOwner
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.DurationSeconds,
		&item.VideoKey, &item.ThumbnailURL, &item.Views, &item.IsPublished, &item.IsReady,
		&item.CreatedAt, &item.UpdatedAt,
		&item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
