package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
	"campusmarket/internal/repository/order_repo"
)

type memOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	logger *zap.Logger
}

func NewOrderRepository(l *zap.Logger) order_repo.OrderRepository {
	return &memOrderRepository{
		orders: make(map[string]*domain.Order),
		logger: l,
	}
}

func (r *memOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists: %w", order.ID, domain.ErrConflict)
	}
	for _, o := range r.orders {
		if o.ListingID == order.ListingID && o.Status == domain.OrderStatusReserved {
			return fmt.Errorf("listing %s: %w", order.ListingID, domain.ErrAlreadyReserved)
		}
	}
	order.Version = 1
	r.orders[order.ID] = order.Clone()
	r.logger.Debug("Order stored", zap.String("order_id", order.ID))
	return nil
}

func (r *memOrderRepository) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *memOrderRepository) GetActiveOrderByListingID(_ context.Context, listingID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.ListingID == listingID && order.Status == domain.OrderStatusReserved {
			return order.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memOrderRepository) GetOrdersByBuyerID(_ context.Context, buyerID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, order := range r.orders {
		if order.BuyerID == buyerID {
			out = append(out, order.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReservedAt.After(out[j].ReservedAt)
	})
	return out, nil
}

func (r *memOrderRepository) UpdateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != order.Version {
		r.logger.Debug("Order version conflict",
			zap.String("order_id", order.ID),
			zap.Uint64("stored_version", stored.Version),
			zap.Uint64("submitted_version", order.Version))
		return domain.ErrConflict
	}
	next := order.Clone()
	next.Version++
	r.orders[order.ID] = next
	order.Version = next.Version
	return nil
}
