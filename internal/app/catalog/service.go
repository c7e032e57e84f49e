package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
	"campusmarket/internal/repository/listing_repo"
	"campusmarket/internal/util"
)

var ErrListingNotFound = fmt.Errorf("listing: %w", domain.ErrNotFound)

// CatalogService owns listing creation and browsing. Status transitions
// (Available/Reserved/Sold) are driven by the order tracker, not here.
type CatalogService interface {
	CreateListing(ctx context.Context, req *CreateListingRequest) (*ListingResponse, error)
	GetListing(ctx context.Context, listingID string) (*ListingResponse, error)
	BrowseListings(ctx context.Context, filter *domain.ListingFilter) ([]*ListingResponse, error)
	GetListingsBySellerID(ctx context.Context, sellerID string) ([]*ListingResponse, error)
}

type catalogService struct {
	listingRepo listing_repo.ListingRepository
	logger      *zap.Logger
}

func NewCatalogService(listingRepo listing_repo.ListingRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		listingRepo: listingRepo,
		logger:      logger,
	}
}

func (s *catalogService) CreateListing(ctx context.Context, req *CreateListingRequest) (*ListingResponse, error) {
	listing, err := domain.NewListing(
		util.GenerateUUID(),
		req.SellerID,
		req.Title,
		req.Description,
		req.Price,
		domain.ListingCondition(req.Condition),
		req.Category,
		req.Department,
	)
	if err != nil {
		s.logger.Debug("Rejected listing", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}
	if err := s.listingRepo.CreateListing(ctx, listing); err != nil {
		s.logger.Error("Failed to store listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID),
		zap.String("seller_id", listing.SellerID),
		zap.Int64("price", listing.Price))
	return mapListingToResponse(listing), nil
}

func (s *catalogService) GetListing(ctx context.Context, listingID string) (*ListingResponse, error) {
	listing, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("Failed to load listing", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	return mapListingToResponse(listing), nil
}

func (s *catalogService) BrowseListings(ctx context.Context, filter *domain.ListingFilter) ([]*ListingResponse, error) {
	listings, err := s.listingRepo.ListListings(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to browse listings", zap.Error(err))
		return nil, err
	}
	return mapListingsToResponse(listings), nil
}

func (s *catalogService) GetListingsBySellerID(ctx context.Context, sellerID string) ([]*ListingResponse, error) {
	listings, err := s.listingRepo.GetListingsBySellerID(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to list seller listings", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, err
	}
	return mapListingsToResponse(listings), nil
}

func mapListingToResponse(listing *domain.Listing) *ListingResponse {
	return &ListingResponse{
		ID:          listing.ID,
		SellerID:    listing.SellerID,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Condition:   string(listing.Condition),
		Category:    listing.Category,
		Department:  listing.Department,
		Status:      string(listing.Status),
		CreatedAt:   listing.CreatedAt.Format(time.RFC3339),
	}
}

func mapListingsToResponse(listings []*domain.Listing) []*ListingResponse {
	responses := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		responses[i] = mapListingToResponse(l)
	}
	return responses
}
