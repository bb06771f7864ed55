package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/repository"
)

// EntitlementService is the gate between premium features and the
// subscription truth. It fails closed: any storage or cache failure reads
// as "not subscribed" rather than an error the caller has to handle.
type EntitlementService struct {
	subscribers *repository.SubscriberRepository
	cache       *repository.StatusCache
	now         func() time.Time
}

// NewEntitlementService creates the gate. cache may be nil in tests.
func NewEntitlementService(subscribers *repository.SubscriberRepository, cache *repository.StatusCache) *EntitlementService {
	return &EntitlementService{
		subscribers: subscribers,
		cache:       cache,
		now:         time.Now,
	}
}

// Status returns the current entitlement snapshot for a user. A lapsed
// expiry overrides a stale subscribed flag.
func (s *EntitlementService) Status(ctx context.Context, userID string) domain.Status {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			// the end date can pass while the snapshot is still cached
			return s.withExpiry(*cached)
		}
	}

	status := s.lookup(ctx, userID)

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, status); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache write failed")
		}
	}
	return status
}

// Subscribed is the boolean gate the rest of the app consults.
func (s *EntitlementService) Subscribed(ctx context.Context, userID string) bool {
	return s.Status(ctx, userID).Subscribed
}

// Update replaces the durable entitlement record and drops the cached
// snapshot so the change is visible on the next check.
func (s *EntitlementService) Update(ctx context.Context, userID string, status domain.Status) error {
	if err := s.subscribers.Upsert(ctx, userID, status); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache invalidate failed")
		}
	}
	return nil
}

func (s *EntitlementService) lookup(ctx context.Context, userID string) domain.Status {
	stored, err := s.subscribers.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Str("user_id", userID).Msg("entitlement lookup failed, treating as unsubscribed")
		}
		return domain.Status{Subscribed: false}
	}

	return s.withExpiry(*stored)
}

// withExpiry clamps a subscribed flag whose end date has passed.
func (s *EntitlementService) withExpiry(status domain.Status) domain.Status {
	if status.Subscribed && status.Expired(s.now()) {
		status.Subscribed = false
	}
	return status
}
