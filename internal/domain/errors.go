package domain

import "errors"

// Every operation in the marketplace core reports failures through one of
// these sentinels so callers can branch with errors.Is.
var (
	ErrInvalidAmount        = errors.New("offer amount outside admissible range")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrNotFound             = errors.New("entity not found")
	ErrThreadAlreadySettled = errors.New("thread already has an accepted offer")
	ErrAlreadyReserved      = errors.New("listing already has an active reservation")
	ErrAlreadyReviewed      = errors.New("order already has a review")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrInvalidListing       = errors.New("invalid listing data")
	ErrConflict             = errors.New("entity version conflict")
)
