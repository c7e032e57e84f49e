package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
	"campusmarket/internal/repository/listing_repo"
	"campusmarket/internal/repository/order_repo"
	"campusmarket/internal/repository/thread_repo"
	"campusmarket/internal/util"
)

var (
	ErrOrderNotFound   = fmt.Errorf("order: %w", domain.ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing: %w", domain.ErrNotFound)
)

// OrderService tracks a reservation from Reserved to Completed or
// Cancelled and gates review submission to completed, unreviewed orders.
// Listing status follows along: Reserved holds the listing, Cancel frees
// it, Complete marks it Sold.
type OrderService interface {
	Reserve(ctx context.Context, listingID, buyerID string) (*OrderResponse, error)
	Cancel(ctx context.Context, orderID, actor string) (*OrderResponse, error)
	Complete(ctx context.Context, orderID, actor string) (*OrderResponse, error)
	SubmitReview(ctx context.Context, orderID, reviewer string, rating int, comment string) (*OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*OrderResponse, error)
	GetOrdersByBuyerID(ctx context.Context, buyerID string, status domain.OrderStatus) ([]*OrderResponse, error)
}

type orderService struct {
	orderRepo   order_repo.OrderRepository
	listingRepo listing_repo.ListingRepository
	threadRepo  thread_repo.ThreadRepository
	logger      *zap.Logger
}

func NewOrderService(
	orderRepo order_repo.OrderRepository,
	listingRepo listing_repo.ListingRepository,
	threadRepo thread_repo.ThreadRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		threadRepo:  threadRepo,
		logger:      logger,
	}
}

func (s *orderService) Reserve(ctx context.Context, listingID, buyerID string) (*OrderResponse, error) {
	listing, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("Failed to load listing for reservation", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	if buyerID == listing.SellerID {
		return nil, fmt.Errorf("seller cannot reserve own listing: %w", domain.ErrInvalidTransition)
	}

	if _, err := s.orderRepo.GetActiveOrderByListingID(ctx, listingID); err == nil {
		return nil, domain.ErrAlreadyReserved
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if listing.Status == domain.ListingStatusReserved {
		return nil, domain.ErrAlreadyReserved
	}
	if err := listing.MarkReserved(); err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(util.GenerateUUID(), listing, buyerID, s.reservationPrice(ctx, listing, buyerID))
	if err != nil {
		s.logger.Error("Failed to build order", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		s.logger.Error("Failed to store order", zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}
	if err := s.listingRepo.UpdateListing(ctx, listing); err != nil {
		s.logger.Warn("Order stored but listing status update failed",
			zap.String("order_id", order.ID),
			zap.String("listing_id", listingID),
			zap.Error(err))
	}

	s.logger.Info("Listing reserved",
		zap.String("order_id", order.ID),
		zap.String("listing_id", listingID),
		zap.String("buyer_id", buyerID),
		zap.Int64("price", order.Price))
	return mapOrderToResponse(order), nil
}

func (s *orderService) Cancel(ctx context.Context, orderID, actor string) (*OrderResponse, error) {
	order, err := s.getOrderForParty(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	s.syncListingStatus(ctx, order.ListingID, (*domain.Listing).MarkAvailable)

	s.logger.Info("Reservation cancelled", zap.String("order_id", orderID))
	return mapOrderToResponse(order), nil
}

func (s *orderService) Complete(ctx context.Context, orderID, actor string) (*OrderResponse, error) {
	order, err := s.getOrderForParty(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if err := order.Complete(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	s.syncListingStatus(ctx, order.ListingID, (*domain.Listing).MarkSold)

	s.logger.Info("Order completed", zap.String("order_id", orderID))
	return mapOrderToResponse(order), nil
}

func (s *orderService) SubmitReview(ctx context.Context, orderID, reviewer string, rating int, comment string) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if reviewer != order.BuyerID {
		return nil, fmt.Errorf("only the buyer may review: %w", domain.ErrInvalidTransition)
	}
	if err := order.AttachReview(rating, comment); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.String("order_id", orderID),
		zap.Int("rating", rating))
	return mapOrderToResponse(order), nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return mapOrderToResponse(order), nil
}

// GetOrdersByBuyerID lists a buyer's orders, optionally narrowed to one
// status. An empty status returns everything.
func (s *orderService) GetOrdersByBuyerID(ctx context.Context, buyerID string, status domain.OrderStatus) ([]*OrderResponse, error) {
	orders, err := s.orderRepo.GetOrdersByBuyerID(ctx, buyerID)
	if err != nil {
		s.logger.Error("Failed to list orders for buyer", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}
	responses := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		responses = append(responses, mapOrderToResponse(o))
	}
	return responses, nil
}

func (s *orderService) getOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (s *orderService) getOrderForParty(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor != order.BuyerID && actor != order.SellerID {
		return nil, fmt.Errorf("actor %s is not a party to the order: %w", actor, domain.ErrInvalidTransition)
	}
	return order, nil
}

// reservationPrice returns the settled offer amount when the buyer
// negotiated one, otherwise the list price.
func (s *orderService) reservationPrice(ctx context.Context, listing *domain.Listing, buyerID string) int64 {
	thread, err := s.threadRepo.GetThreadByListingAndBuyer(ctx, listing.ID, buyerID)
	if err != nil {
		return listing.Price
	}
	if accepted := thread.AcceptedOffer(); accepted != nil {
		return accepted.Amount
	}
	return listing.Price
}

// syncListingStatus applies a listing transition after an order mutation.
// The order is the source of truth; a listing that cannot follow is logged
// and left alone.
func (s *orderService) syncListingStatus(ctx context.Context, listingID string, transition func(*domain.Listing) error) {
	listing, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		s.logger.Warn("Failed to load listing for status sync", zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	if err := transition(listing); err != nil {
		s.logger.Warn("Listing cannot follow order transition",
			zap.String("listing_id", listingID),
			zap.String("listing_status", string(listing.Status)),
			zap.Error(err))
		return
	}
	if err := s.listingRepo.UpdateListing(ctx, listing); err != nil {
		s.logger.Warn("Failed to update listing status", zap.String("listing_id", listingID), zap.Error(err))
	}
}

func mapOrderToResponse(order *domain.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:         order.ID,
		ListingID:  order.ListingID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		Price:      order.Price,
		Status:     string(order.Status),
		ReservedAt: order.ReservedAt.Format(time.RFC3339),
	}
	if order.CompletedAt != nil {
		resp.CompletedAt = order.CompletedAt.Format(time.RFC3339)
	}
	if order.Review != nil {
		resp.Review = &ReviewResponse{
			Rating:    order.Review.Rating,
			Comment:   order.Review.Comment,
			CreatedAt: order.Review.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}
