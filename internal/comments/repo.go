package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/httpx"
	"github.com/videostream/videostream/internal/shared"
)

// Repository provides PostgreSQL backed persistence for comments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const commentColumns = `c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at, u.username, u.avatar_url`

// Create inserts a comment.
func (r *Repository) Create(ctx context.Context, c *Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, video_id, owner_id, content) VALUES ($1, $2, $3, $4)`,
		c.ID, c.VideoID, c.OwnerID, c.Content)
	if err != nil {
		return fmt.Errorf("comments: insert: %w", err)
	}
	return nil
}

// GetByID fetches a comment with its author.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*CommentWithOwner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.owner_id
		WHERE c.id = $1`, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

// ListByVideo returns one page of a video's comments, newest first.
func (r *Repository) ListByVideo(ctx context.Context, videoID uuid.UUID, page shared.Pagination) ([]CommentWithOwner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comments: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.owner_id
		WHERE c.video_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`, videoID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	var items []CommentWithOwner
	for rows.Next() {
		item, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// Update changes the comment content.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, content string) (*CommentWithOwner, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = now() WHERE id = $1`, id, content)
	if err != nil {
		return nil, fmt.Errorf("comments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a comment; likes cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*CommentWithOwner, error) {
	var c CommentWithOwner
	err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.OwnerUsername, &c.OwnerAvatar)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
