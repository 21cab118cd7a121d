package tweets

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

// Repository provides PostgreSQL backed persistence for tweets.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tweetColumns = `t.id, t.owner_id, t.content, t.created_at, t.updated_at, u.username, u.avatar_url`

// Create inserts a tweet.
func (r *Repository) Create(ctx context.Context, t *Tweet) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tweets (id, owner_id, content) VALUES ($1, $2, $3)`,
		t.ID, t.OwnerID, t.Content)
	if err != nil {
		return fmt.Errorf("tweets: insert: %w", err)
	}
	return nil
}

// GetByID fetches a tweet with its author.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*TweetWithOwner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets t JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1`, id)
	tweet, err := scanTweet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return tweet, nil
}

// List returns tweets matching the filter, newest first unless asked
// otherwise.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]TweetWithOwner, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("t.content ILIKE $%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("t.owner_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tweets t WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("tweets: count: %w", err)
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortType, "asc") {
		direction = "ASC"
	}
	page := shared.NewPagination(filter.Page, filter.Limit, total)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM tweets t JOIN users u ON u.id = t.owner_id
		WHERE %s
		ORDER BY t.created_at %s
		LIMIT $%d OFFSET $%d`, tweetColumns, cond, direction, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("tweets: list: %w", err)
	}
	defer rows.Close()

	var items []TweetWithOwner
	for rows.Next() {
		item, err := scanTweet(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// Update changes the tweet content.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, content string) (*TweetWithOwner, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tweets SET content = $2, updated_at = now() WHERE id = $1`, id, content)
	if err != nil {
		return nil, fmt.Errorf("tweets: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a tweet; likes cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("tweets: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanTweet(row pgx.Row) (*TweetWithOwner, error) {
	var t TweetWithOwner
	err := row.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt,
		&t.OwnerUsername, &t.OwnerAvatar)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
