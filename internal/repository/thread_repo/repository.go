package thread_repo

import (
	"context"

	"campusmarket/internal/domain"
)

type ThreadRepository interface {
	CreateThread(ctx context.Context, thread *domain.Thread) error
	GetThreadByID(ctx context.Context, id string) (*domain.Thread, error)
	GetThreadByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*domain.Thread, error)
	GetThreadsByUserID(ctx context.Context, userID string) ([]*domain.Thread, error)
	UpdateThread(ctx context.Context, thread *domain.Thread) error
}
