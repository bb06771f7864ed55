package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Bid2Bid/bid2bid-backend/internal/currency"
	"github.com/Bid2Bid/bid2bid-backend/internal/draft"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/repository"
)

const startDateLayout = "2006-01-02"

// EntitlementChecker answers whether a user may use premium features.
// Implementations fail closed: any doubt means false.
type EntitlementChecker interface {
	Subscribed(ctx context.Context, userID string) bool
}

// ProjectService validates drafts and reconciles them with the store. One
// explicit save persists the whole draft; concurrent saves of the same
// project (auto-save racing a manual save) are serialized so a project
// never has two writes in flight, and every save still lands.
type ProjectService struct {
	store        *repository.ProjectStore
	entitlements EntitlementChecker

	mu        sync.Mutex
	saveLocks map[string]*semaphore.Weighted
}

// NewProjectService creates a new project service.
func NewProjectService(store *repository.ProjectStore, entitlements EntitlementChecker) *ProjectService {
	return &ProjectService{
		store:        store,
		entitlements: entitlements,
		saveLocks:    make(map[string]*semaphore.Weighted),
	}
}

// Create creates a new, empty-vendored project.
func (s *ProjectService) Create(ctx context.Context, userID, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, draft.ErrNameRequired
	}
	return s.store.Create(ctx, userID, name)
}

// List returns the user's projects, newest first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.store.List(ctx, userID)
}

// Load fetches a project with its vendors and shares.
func (s *ProjectService) Load(ctx context.Context, userID, projectID string) (*domain.Bundle, error) {
	return s.store.LoadBundle(ctx, userID, projectID)
}

// Delete removes a project and everything attached to it.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) (bool, error) {
	return s.store.Delete(ctx, userID, projectID)
}

// SaveDraft validates d and persists it atomically. The returned bundle
// carries the server-assigned ids, so the caller can replace its local
// ones. Validation failures and entitlement denials come back as the
// draft package's sentinel errors.
func (s *ProjectService) SaveDraft(ctx context.Context, userID string, d *draft.Draft) (*domain.Bundle, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if len(d.Vendors) < 1 {
		return nil, draft.ErrLastVendor
	}

	subscribed := s.entitlements.Subscribed(ctx, userID)
	if !subscribed && len(d.Vendors) > draft.MaxVendorsFree {
		return nil, draft.ErrVendorLimit
	}

	in, err := buildSaveInput(d, subscribed)
	if err != nil {
		return nil, err
	}

	// Queue behind any in-flight save of the same project. Each save
	// writes its own draft; piggy-backing on another save's result would
	// silently drop this one.
	lock := s.saveLock(userID + "/" + in.ProjectID)
	if err := lock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer lock.Release(1)

	return s.store.SaveBundle(ctx, userID, in)
}

func (s *ProjectService) saveLock(key string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.saveLocks[key]
	if !ok {
		lock = semaphore.NewWeighted(1)
		s.saveLocks[key] = lock
	}
	return lock
}

// ListFavorites returns the user's favorite vendors across projects.
func (s *ProjectService) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteVendor, error) {
	return s.store.ListFavorites(ctx, userID)
}

// RemoveFavorite clears the favorite flag on one vendor.
func (s *ProjectService) RemoveFavorite(ctx context.Context, userID, vendorID string) error {
	ok, err := s.store.ClearFavorite(ctx, userID, vendorID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrVendorNotFound
	}
	return nil
}

// SuggestVendorNames serves the favorite-vendor autocomplete.
func (s *ProjectService) SuggestVendorNames(ctx context.Context, userID, prefix string) ([]string, error) {
	return s.store.SuggestFavoriteNames(ctx, userID, strings.TrimSpace(prefix), 10)
}

// buildSaveInput converts a validated draft into canonical store values:
// parsed costs and dates, truncated names, a single favorite, a clean
// deduplicated sharing list.
func buildSaveInput(d *draft.Draft, subscribed bool) (repository.SaveInput, error) {
	in := repository.SaveInput{
		ProjectID:      d.ProjectID,
		IsNew:          draft.IsLocalID(d.ProjectID),
		Name:           strings.TrimSpace(d.Name),
		AllowNewShares: subscribed,
	}

	seenFavorite := false
	for _, v := range d.Vendors {
		if !draft.ValidJobDuration(v.JobDuration) {
			return in, draft.ErrInvalidDuration
		}

		name := draft.TruncateName(v.VendorName)

		var startDate *time.Time
		if t, err := time.Parse(startDateLayout, v.StartDate); err == nil {
			startDate = &t
		}

		fav := v.IsFavorite && !seenFavorite
		if fav {
			seenFavorite = true
		}

		in.Vendors = append(in.Vendors, repository.VendorInput{
			ID:          v.ID,
			IsNew:       draft.IsLocalID(v.ID),
			VendorName:  name,
			PhoneNumber: strings.TrimSpace(v.PhoneNumber),
			StartDate:   startDate,
			JobDuration: v.JobDuration,
			TotalCost:   parseCost(v.TotalCost),
			IsFavorite:  fav,
		})
	}

	seen := make(map[string]bool, len(d.SharedEmails))
	for _, e := range d.SharedEmails {
		email := strings.ToLower(strings.TrimSpace(e))
		if email == "" || seen[email] {
			continue
		}
		if !draft.ValidEmail(email) {
			return in, draft.ErrInvalidEmail
		}
		seen[email] = true
		in.Emails = append(in.Emails, email)
	}
	if len(in.Emails) > draft.MaxShares {
		return in, draft.ErrShareLimit
	}

	return in, nil
}

// parseCost accepts either the sanitized live value or an
// already-committed display string; either way the canonical number wins.
func parseCost(raw string) float64 {
	return currency.Parse(raw)
}
