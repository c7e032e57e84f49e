package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
	"campusmarket/internal/repository/listing_repo"
)

// memListingRepository keeps listings in a mutex-guarded map. Reads return
// deep copies so callers never hold live store state; updates are rejected
// with domain.ErrConflict when the submitted version is stale.
type memListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
	logger   *zap.Logger
}

func NewListingRepository(l *zap.Logger) listing_repo.ListingRepository {
	return &memListingRepository{
		listings: make(map[string]*domain.Listing),
		logger:   l,
	}
}

func (r *memListingRepository) CreateListing(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.ID]; exists {
		return fmt.Errorf("listing %s already exists: %w", listing.ID, domain.ErrConflict)
	}
	listing.Version = 1
	r.listings[listing.ID] = listing.Clone()
	r.logger.Debug("Listing stored", zap.String("listing_id", listing.ID))
	return nil
}

func (r *memListingRepository) GetListingByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return listing.Clone(), nil
}

func (r *memListingRepository) ListListings(_ context.Context, filter *domain.ListingFilter) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Listing
	for _, listing := range r.listings {
		if filter == nil || filter.Matches(listing) {
			out = append(out, listing.Clone())
		}
	}

	sortBy := domain.SortNewest
	if filter != nil && filter.SortBy != "" {
		sortBy = filter.SortBy
	}
	sort.Slice(out, func(i, j int) bool {
		switch sortBy {
		case domain.SortPriceAsc:
			return out[i].Price < out[j].Price
		case domain.SortPriceDesc:
			return out[i].Price > out[j].Price
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out, nil
}

func (r *memListingRepository) GetListingsBySellerID(_ context.Context, sellerID string) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Listing
	for _, listing := range r.listings {
		if listing.SellerID == sellerID {
			out = append(out, listing.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memListingRepository) UpdateListing(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[listing.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != listing.Version {
		r.logger.Debug("Listing version conflict",
			zap.String("listing_id", listing.ID),
			zap.Uint64("stored_version", stored.Version),
			zap.Uint64("submitted_version", listing.Version))
		return domain.ErrConflict
	}
	next := listing.Clone()
	next.Version++
	r.listings[listing.ID] = next
	listing.Version = next.Version
	return nil
}
