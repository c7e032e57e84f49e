package domain

import (
	"fmt"
	"strings"
	"time"
)

type ListingCondition string

const (
	ConditionNew     ListingCondition = "New"
	ConditionLikeNew ListingCondition = "Like New"
	ConditionGood    ListingCondition = "Good"
	ConditionUsable  ListingCondition = "Usable"
)

func (c ListingCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionUsable:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "Available"
	ListingStatusReserved  ListingStatus = "Reserved"
	ListingStatusSold      ListingStatus = "Sold"
)

// Listing is an item put up for sale by a student. Prices are integers in
// minor currency units. Fields other than Status and Version are immutable
// after creation.
type Listing struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Price       int64
	Condition   ListingCondition
	Category    string
	Department  string
	Status      ListingStatus
	CreatedAt   time.Time
	Version     uint64
}

func NewListing(id, sellerID, title, description string, price int64, condition ListingCondition, category, department string) (*Listing, error) {
	if id == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: missing id or seller", ErrInvalidListing)
	}
	if len(strings.TrimSpace(title)) < 3 {
		return nil, fmt.Errorf("%w: title must be at least 3 characters", ErrInvalidListing)
	}
	if len(strings.TrimSpace(description)) < 10 {
		return nil, fmt.Errorf("%w: description must be at least 10 characters", ErrInvalidListing)
	}
	if price < 1 {
		return nil, fmt.Errorf("%w: price must be at least 1", ErrInvalidListing)
	}
	if !condition.Valid() {
		return nil, fmt.Errorf("%w: unknown condition %q", ErrInvalidListing, condition)
	}
	if category == "" || department == "" {
		return nil, fmt.Errorf("%w: category and department are required", ErrInvalidListing)
	}
	return &Listing{
		ID:          id,
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		Price:       price,
		Condition:   condition,
		Category:    category,
		Department:  department,
		Status:      ListingStatusAvailable,
		CreatedAt:   time.Now(),
	}, nil
}

func (l *Listing) MarkReserved() error {
	if l.Status != ListingStatusAvailable {
		return ErrInvalidTransition
	}
	l.Status = ListingStatusReserved
	return nil
}

func (l *Listing) MarkAvailable() error {
	if l.Status != ListingStatusReserved {
		return ErrInvalidTransition
	}
	l.Status = ListingStatusAvailable
	return nil
}

func (l *Listing) MarkSold() error {
	if l.Status != ListingStatusReserved {
		return ErrInvalidTransition
	}
	l.Status = ListingStatusSold
	return nil
}

func (l *Listing) Clone() *Listing {
	c := *l
	return &c
}

// ListingFilter narrows a catalog browse. Zero values mean "no constraint".
type ListingFilter struct {
	Keyword    string
	Category   string
	Department string
	Condition  ListingCondition
	MinPrice   int64
	MaxPrice   int64
	Status     ListingStatus
	SortBy     ListingSort
}

type ListingSort string

const (
	SortNewest    ListingSort = "newest"
	SortPriceAsc  ListingSort = "price_asc"
	SortPriceDesc ListingSort = "price_desc"
)

// Matches reports whether the listing satisfies every set constraint.
// An empty Status matches only Available listings, mirroring the public
// browse page.
func (f *ListingFilter) Matches(l *Listing) bool {
	status := f.Status
	if status == "" {
		status = ListingStatusAvailable
	}
	if l.Status != status {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(l.Title), kw) && !strings.Contains(strings.ToLower(l.Description), kw) {
			return false
		}
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Department != "" && l.Department != f.Department {
		return false
	}
	if f.Condition != "" && l.Condition != f.Condition {
		return false
	}
	if f.MinPrice > 0 && l.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && l.Price > f.MaxPrice {
		return false
	}
	return true
}
