package order_repo

import (
	"context"

	"campusmarket/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	// GetActiveOrderByListingID returns the Reserved order holding the
	// listing, or domain.ErrNotFound when the listing has no active hold.
	GetActiveOrderByListingID(ctx context.Context, listingID string) (*domain.Order, error)
	GetOrdersByBuyerID(ctx context.Context, buyerID string) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
}
