package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
	"campusmarket/internal/repository/thread_repo"
)

type memThreadRepository struct {
	mu      sync.RWMutex
	threads map[string]*domain.Thread
	logger  *zap.Logger
}

func NewThreadRepository(l *zap.Logger) thread_repo.ThreadRepository {
	return &memThreadRepository{
		threads: make(map[string]*domain.Thread),
		logger:  l,
	}
}

func (r *memThreadRepository) CreateThread(_ context.Context, thread *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.threads[thread.ID]; exists {
		return fmt.Errorf("thread %s already exists: %w", thread.ID, domain.ErrConflict)
	}
	for _, t := range r.threads {
		if t.ListingID == thread.ListingID && t.BuyerID == thread.BuyerID {
			return fmt.Errorf("thread for listing %s and buyer %s already exists: %w",
				thread.ListingID, thread.BuyerID, domain.ErrConflict)
		}
	}
	thread.Version = 1
	r.threads[thread.ID] = thread.Clone()
	r.logger.Debug("Thread stored", zap.String("thread_id", thread.ID))
	return nil
}

func (r *memThreadRepository) GetThreadByID(_ context.Context, id string) (*domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread, ok := r.threads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return thread.Clone(), nil
}

func (r *memThreadRepository) GetThreadByListingAndBuyer(_ context.Context, listingID, buyerID string) (*domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, thread := range r.threads {
		if thread.ListingID == listingID && thread.BuyerID == buyerID {
			return thread.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memThreadRepository) GetThreadsByUserID(_ context.Context, userID string) ([]*domain.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Thread
	for _, thread := range r.threads {
		if thread.IsParty(userID) {
			out = append(out, thread.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memThreadRepository) UpdateThread(_ context.Context, thread *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.threads[thread.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != thread.Version {
		r.logger.Debug("Thread version conflict",
			zap.String("thread_id", thread.ID),
			zap.Uint64("stored_version", stored.Version),
			zap.Uint64("submitted_version", thread.Version))
		return domain.ErrConflict
	}
	next := thread.Clone()
	next.Version++
	r.threads[thread.ID] = next
	thread.Version = next.Version
	return nil
}
