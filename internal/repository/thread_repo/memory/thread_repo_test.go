package memory

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"campusmarket/internal/domain"
)

func seedThread(t *testing.T) (*memThreadRepository, *domain.Thread) {
	t.Helper()
	repo := NewThreadRepository(zap.NewNop()).(*memThreadRepository)
	listing, err := domain.NewListing("listing-1", "seller-1", "Circuit Design Handbook",
		"Covers analog and digital design basics.", 900, domain.ConditionGood, "Books", "Electrical")
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	thread := domain.NewThread("thread-1", listing, "buyer-1")
	if err := repo.CreateThread(context.Background(), thread); err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	return repo, thread
}

func TestUpdateThreadVersionConflict(t *testing.T) {
	repo, _ := seedThread(t)
	ctx := context.Background()

	first, err := repo.GetThreadByID(ctx, "thread-1")
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}
	second, err := repo.GetThreadByID(ctx, "thread-1")
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}

	first.AppendOffer("o1", "buyer-1", 800)
	if err := repo.UpdateThread(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second.AppendOffer("o2", "seller-1", 850)
	if err := repo.UpdateThread(ctx, second); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale update: err = %v, want ErrConflict", err)
	}

	// Re-read and retry, the caller's contract on Conflict.
	fresh, err := repo.GetThreadByID(ctx, "thread-1")
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}
	fresh.AppendOffer("o2", "seller-1", 850)
	if err := repo.UpdateThread(ctx, fresh); err != nil {
		t.Fatalf("retry after re-read: %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	repo, _ := seedThread(t)
	ctx := context.Background()

	got, err := repo.GetThreadByID(ctx, "thread-1")
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}
	got.AppendOffer("rogue", "buyer-1", 700)
	got.BuyerID = "someone-else"

	stored, err := repo.GetThreadByID(ctx, "thread-1")
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}
	if len(stored.Offers) != 0 || stored.BuyerID != "buyer-1" {
		t.Fatalf("store mutated through a read copy: %+v", stored)
	}
}

func TestCreateThreadRejectsDuplicatePair(t *testing.T) {
	repo, _ := seedThread(t)
	listing, err := domain.NewListing("listing-1", "seller-1", "Circuit Design Handbook",
		"Covers analog and digital design basics.", 900, domain.ConditionGood, "Books", "Electrical")
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	dup := domain.NewThread("thread-2", listing, "buyer-1")
	if err := repo.CreateThread(context.Background(), dup); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate pair: err = %v, want ErrConflict", err)
	}
}

func TestGetThreadByListingAndBuyer(t *testing.T) {
	repo, thread := seedThread(t)
	ctx := context.Background()

	got, err := repo.GetThreadByListingAndBuyer(ctx, thread.ListingID, thread.BuyerID)
	if err != nil {
		t.Fatalf("GetThreadByListingAndBuyer: %v", err)
	}
	if got.ID != thread.ID {
		t.Fatalf("got thread %s, want %s", got.ID, thread.ID)
	}
	if _, err := repo.GetThreadByListingAndBuyer(ctx, thread.ListingID, "buyer-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown pair: err = %v, want ErrNotFound", err)
	}
}
