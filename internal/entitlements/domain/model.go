package domain

import (
	"errors"
	"time"
)

// Status is the ephemeral entitlement snapshot for one user. Field names
// match the payload of the original check-subscription function.
type Status struct {
	Subscribed      bool       `json:"subscribed"`
	Tier            string     `json:"subscription_tier,omitempty"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
}

// Expired reports whether the subscription lapsed before now.
func (s Status) Expired(now time.Time) bool {
	return s.SubscriptionEnd != nil && s.SubscriptionEnd.Before(now)
}

var ErrNotFound = errors.New("subscriber not found")
