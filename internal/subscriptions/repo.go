package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videostream/videostream/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for subscriptions.
// Toggle idempotence comes from the (subscriber_id, channel_id) unique
// constraint.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Toggle flips the subscription state and reports the resulting state. A
// missing channel surfaces as httpx.ErrNotFound via the foreign key.
func (r *Repository) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		uuid.New(), subscriberID, channelID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, httpx.ErrNotFound
		}
		return false, fmt.Errorf("subscriptions: toggle insert: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	_, err = r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("subscriptions: toggle delete: %w", err)
	}
	return false, nil
}

// IsSubscribed reports whether the viewer subscribes to the channel.
func (r *Repository) IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	var subscribed bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID).Scan(&subscribed)
	return subscribed, err
}

// CountSubscribers returns the channel's subscriber count.
func (r *Repository) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&n)
	return n, err
}

// SubscribedChannels returns the channels the user subscribes to, most
// recent first.
func (r *Repository) SubscribedChannels(ctx context.Context, subscriberID uuid.UUID) ([]ChannelSummary, error) {
	return r.listChannels(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, s.created_at
		FROM subscriptions s JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC`, subscriberID)
}

// Subscribers returns the users subscribed to the channel, most recent
// first.
func (r *Repository) Subscribers(ctx context.Context, channelID uuid.UUID) ([]ChannelSummary, error) {
	return r.listChannels(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, s.created_at
		FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
		ORDER BY s.created_at DESC`, channelID)
}

// ChannelDetails returns the channel's profile with its subscriber count and
// the viewer's standing.
func (r *Repository) ChannelDetails(ctx context.Context, channelID, viewerID uuid.UUID) (*ChannelDetails, error) {
	var d ChannelDetails
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_image_url,
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = u.id),
			EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $2 AND channel_id = u.id)
		FROM users u WHERE u.id = $1`, channelID, viewerID).
		Scan(&d.ID, &d.Username, &d.FullName, &d.AvatarURL, &d.CoverImageURL,
			&d.SubscriberCount, &d.IsSubscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repository) listChannels(ctx context.Context, query string, arg any) ([]ChannelSummary, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("subscriptions: list: %w", err)
	}
	defer rows.Close()

	var items []ChannelSummary
	for rows.Next() {
		var item ChannelSummary
		if err := rows.Scan(&item.ID, &item.Username, &item.FullName,
			&item.AvatarURL, &item.SubscribedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
