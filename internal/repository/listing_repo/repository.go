package listing_repo

import (
	"context"

	"campusmarket/internal/domain"
)

type ListingRepository interface {
	CreateListing(ctx context.Context, listing *domain.Listing) error
	GetListingByID(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, filter *domain.ListingFilter) ([]*domain.Listing, error)
	GetListingsBySellerID(ctx context.Context, sellerID string) ([]*domain.Listing, error)
	UpdateListing(ctx context.Context, listing *domain.Listing) error
}
