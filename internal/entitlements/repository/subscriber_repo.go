package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
)

// SubscriberRepository persists the durable entitlement record per user.
// The webhook and the nightly sweep write it; the gate reads it.
type SubscriberRepository struct {
	db *sql.DB
}

// NewSubscriberRepository creates a new subscriber repository.
func NewSubscriberRepository(db *sql.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Get returns the stored entitlement for a user.
func (r *SubscriberRepository) Get(ctx context.Context, userID string) (*domain.Status, error) {
	const q = `
SELECT subscribed, COALESCE(subscription_tier, ''), subscription_end
FROM subscribers
WHERE user_id = $1;
`
	var s domain.Status
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&s.Subscribed, &s.Tier, &s.SubscriptionEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert replaces the entitlement record for a user.
func (r *SubscriberRepository) Upsert(ctx context.Context, userID string, s domain.Status) error {
	const q = `
INSERT INTO subscribers (user_id, subscribed, subscription_tier, subscription_end, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, now())
ON CONFLICT (user_id) DO UPDATE
SET subscribed = EXCLUDED.subscribed,
    subscription_tier = EXCLUDED.subscription_tier,
    subscription_end = EXCLUDED.subscription_end,
    updated_at = now();
`
	_, err := r.db.ExecContext(ctx, q, userID, s.Subscribed, s.Tier, s.SubscriptionEnd)
	return err
}

// ExpireLapsed flips subscribed off for every row whose subscription_end
// has passed. Webhooks can be missed; this is the backstop.
func (r *SubscriberRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	const q = `
UPDATE subscribers
SET subscribed = false, updated_at = now()
WHERE subscribed = true AND subscription_end IS NOT NULL AND subscription_end < $1;
`
	result, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
