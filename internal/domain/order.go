package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusReserved  OrderStatus = "Reserved"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Review is a buyer's rating of a completed order. Immutable once attached.
type Review struct {
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Order is a buyer's hold on a listing. Completed and Cancelled are
// terminal. CompletedAt is set iff the order completed; Review may be
// attached at most once and only after completion.
type Order struct {
	ID          string
	ListingID   string
	BuyerID     string
	SellerID    string
	Price       int64
	Status      OrderStatus
	ReservedAt  time.Time
	CompletedAt *time.Time
	Review      *Review
	Version     uint64
}

func NewOrder(id string, listing *Listing, buyerID string, price int64) (*Order, error) {
	if id == "" || buyerID == "" || price <= 0 {
		return nil, errors.New("invalid order data")
	}
	return &Order{
		ID:         id,
		ListingID:  listing.ID,
		BuyerID:    buyerID,
		SellerID:   listing.SellerID,
		Price:      price,
		Status:     OrderStatusReserved,
		ReservedAt: time.Now(),
	}, nil
}

func (o *Order) Cancel() error {
	if o.Status != OrderStatusReserved {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusCancelled
	return nil
}

func (o *Order) Complete() error {
	if o.Status != OrderStatusReserved {
		return ErrInvalidTransition
	}
	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	return nil
}

func (o *Order) AttachReview(rating int, comment string) error {
	if o.Status != OrderStatusCompleted {
		return ErrInvalidTransition
	}
	if o.Review != nil {
		return ErrAlreadyReviewed
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	o.Review = &Review{
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	return nil
}

func (o *Order) Clone() *Order {
	c := *o
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	if o.Review != nil {
		r := *o.Review
		c.Review = &r
	}
	return &c
}
