package negotiation

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"campusmarket/internal/config"
	"campusmarket/internal/domain"
	listing_memory "campusmarket/internal/repository/listing_repo/memory"
	"campusmarket/internal/repository/thread_repo"
	thread_memory "campusmarket/internal/repository/thread_repo/memory"
)

const (
	sellerID = "seller-1"
	buyerID  = "buyer-1"
)

var defaultPolicy = config.OfferPolicy{
	MinRatio:  0.5,
	MaxRatio:  1.0,
	Supersede: config.SupersedeIgnore,
}

type fixture struct {
	svc        NegotiationService
	threadRepo thread_repo.ThreadRepository
	listingID  string
	threadID   string
}

func newFixture(t *testing.T, policy config.OfferPolicy, listPrice int64) *fixture {
	t.Helper()
	logger := zap.NewNop()
	listingRepo := listing_memory.NewListingRepository(logger)
	threadRepo := thread_memory.NewThreadRepository(logger)

	listing, err := domain.NewListing("listing-1", sellerID, "Scientific Calculator TI-84",
		"Barely used graphing calculator, all functions working.", listPrice,
		domain.ConditionGood, "Electronics", "All")
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if err := listingRepo.CreateListing(context.Background(), listing); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	svc := NewNegotiationService(threadRepo, listingRepo, policy, logger)
	thread, err := svc.OpenThread(context.Background(), listing.ID, buyerID)
	if err != nil {
		t.Fatalf("OpenThread: %v", err)
	}
	return &fixture{svc: svc, threadRepo: threadRepo, listingID: listing.ID, threadID: thread.ID}
}

func TestOpenThreadIsIdempotentPerBuyer(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	again, err := f.svc.OpenThread(ctx, f.listingID, buyerID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.ID != f.threadID {
		t.Fatalf("reopen created a new thread: %s != %s", again.ID, f.threadID)
	}
	if _, err := f.svc.OpenThread(ctx, f.listingID, sellerID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("seller opening own thread: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.OpenThread(ctx, "nope", buyerID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown listing: err = %v, want ErrNotFound", err)
	}
}

func TestSubmitOfferAmountBounds(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	cases := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{"below half price", 899, domain.ErrInvalidAmount},
		{"negative", -100, domain.ErrInvalidAmount},
		{"zero", 0, domain.ErrInvalidAmount},
		{"above list price", 1801, domain.ErrInvalidAmount},
		{"at lower bound", 900, nil},
		{"at list price", 1800, nil},
		{"inside range", 1500, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offer, err := f.svc.SubmitOffer(ctx, f.threadID, buyerID, tc.amount)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if offer.Status != string(domain.OfferStatusPending) {
				t.Fatalf("status = %s, want Pending", offer.Status)
			}
		})
	}
}

func TestSubmitOfferRejectsNonParty(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	if _, err := f.svc.SubmitOffer(context.Background(), f.threadID, "stranger", 1500); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

// The settlement walk from the product brief: list price 1800, buyer opens
// at 1500, seller counters 1650, buyer takes the counter, then tries to
// accept the stale 1500.
func TestCounterOfferSettlement(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	first, err := f.svc.SubmitOffer(ctx, f.threadID, buyerID, 1500)
	if err != nil {
		t.Fatalf("buyer offer: %v", err)
	}
	counter, err := f.svc.SubmitOffer(ctx, f.threadID, sellerID, 1650)
	if err != nil {
		t.Fatalf("seller counter: %v", err)
	}

	thread, err := f.svc.GetThread(ctx, f.threadID)
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if len(thread.Entries) != 2 {
		t.Fatalf("thread has %d entries, want 2", len(thread.Entries))
	}

	accepted, err := f.svc.AcceptOffer(ctx, f.threadID, counter.ID, buyerID)
	if err != nil {
		t.Fatalf("accept counter: %v", err)
	}
	if accepted.Status != string(domain.OfferStatusAccepted) || accepted.Amount != 1650 {
		t.Fatalf("accepted = %+v", accepted)
	}

	if _, err := f.svc.AcceptOffer(ctx, f.threadID, first.ID, sellerID); !errors.Is(err, domain.ErrThreadAlreadySettled) {
		t.Fatalf("accept stale offer: err = %v, want ErrThreadAlreadySettled", err)
	}
	// Accepting your own earlier offer in a settled thread also reports the
	// settled thread, not the self-accept.
	if _, err := f.svc.AcceptOffer(ctx, f.threadID, first.ID, buyerID); !errors.Is(err, domain.ErrThreadAlreadySettled) {
		t.Fatalf("self-accept in settled thread: err = %v, want ErrThreadAlreadySettled", err)
	}
	if _, err := f.svc.SubmitOffer(ctx, f.threadID, buyerID, 1500); !errors.Is(err, domain.ErrThreadAlreadySettled) {
		t.Fatalf("offer into settled thread: err = %v, want ErrThreadAlreadySettled", err)
	}
	// Chat stays open after the deal.
	if _, err := f.svc.SendMessage(ctx, f.threadID, buyerID, "See you at the library at 5?"); err != nil {
		t.Fatalf("message after settlement: %v", err)
	}
}

func TestAcceptOfferPreconditions(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	offer, err := f.svc.SubmitOffer(ctx, f.threadID, buyerID, 1500)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}

	if _, err := f.svc.AcceptOffer(ctx, f.threadID, "missing", sellerID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown offer: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.AcceptOffer(ctx, f.threadID, offer.ID, buyerID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("self accept: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.AcceptOffer(ctx, f.threadID, offer.ID, "stranger"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("stranger accept: err = %v, want ErrInvalidTransition", err)
	}

	if _, err := f.svc.RejectOffer(ctx, f.threadID, offer.ID, sellerID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.AcceptOffer(ctx, f.threadID, offer.ID, sellerID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("accept rejected offer: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.RejectOffer(ctx, f.threadID, offer.ID, sellerID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("re-reject: err = %v, want ErrInvalidTransition", err)
	}
}

func TestSupersedePolicyAutoReject(t *testing.T) {
	policy := defaultPolicy
	policy.Supersede = config.SupersedeAutoReject
	f := newFixture(t, policy, 1800)
	ctx := context.Background()

	first, err := f.svc.SubmitOffer(ctx, f.threadID, buyerID, 1400)
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	counter, err := f.svc.SubmitOffer(ctx, f.threadID, sellerID, 1600)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if _, err := f.svc.AcceptOffer(ctx, f.threadID, counter.ID, buyerID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	thread, err := f.threadRepo.GetThreadByID(ctx, f.threadID)
	if err != nil {
		t.Fatalf("GetThreadByID: %v", err)
	}
	if got := thread.OfferByID(first.ID).Status; got != domain.OfferStatusRejected {
		t.Fatalf("sibling offer status = %s, want Rejected", got)
	}
	if got := thread.OfferByID(counter.ID).Status; got != domain.OfferStatusAccepted {
		t.Fatalf("accepted offer status = %s, want Accepted", got)
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	if _, err := f.svc.SendMessage(ctx, f.threadID, buyerID, ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("empty message: err = %v, want ErrEmptyMessage", err)
	}
	if _, err := f.svc.SendMessage(ctx, f.threadID, "stranger", "hi"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("stranger message: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.SendMessage(ctx, "missing", buyerID, "hi"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown thread: err = %v, want ErrNotFound", err)
	}

	resp, err := f.svc.SendMessage(ctx, f.threadID, buyerID, "Is this still available?")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Kind != entryKindMessage {
		t.Fatalf("entries = %+v", resp.Entries)
	}
}

func TestGetThreadsByUserID(t *testing.T) {
	f := newFixture(t, defaultPolicy, 1800)
	ctx := context.Background()

	for _, userID := range []string{buyerID, sellerID} {
		threads, err := f.svc.GetThreadsByUserID(ctx, userID)
		if err != nil {
			t.Fatalf("list threads for %s: %v", userID, err)
		}
		if len(threads) != 1 || threads[0].ID != f.threadID {
			t.Fatalf("threads for %s = %+v", userID, threads)
		}
	}
	threads, err := f.svc.GetThreadsByUserID(ctx, "stranger")
	if err != nil {
		t.Fatalf("list threads: %v", err)
	}
	if len(threads) != 0 {
		t.Fatalf("stranger sees %d threads", len(threads))
	}
}

// Property: whatever sequence of offers, accepts and rejects a pair of
// parties issues, at most one offer ever ends up Accepted, and every
// stored offer amount lies within the configured range.
func TestProperty_AtMostOneAcceptedOffer(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		listPrice := rapid.Int64Range(100, 100000).Draw(rt, "listPrice")
		f := newFixture(t, defaultPolicy, listPrice)
		ctx := context.Background()

		parties := []string{buyerID, sellerID}
		var offerIDs []string

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			action := rapid.IntRange(0, 2).Draw(rt, "action")
			actor := parties[rapid.IntRange(0, 1).Draw(rt, "actor")]

			switch action {
			case 0:
				amount := rapid.Int64Range(1, 2*listPrice).Draw(rt, "amount")
				offer, err := f.svc.SubmitOffer(ctx, f.threadID, actor, amount)
				inRange := float64(amount) >= 0.5*float64(listPrice) && amount <= listPrice
				if err == nil {
					if !inRange {
						rt.Fatalf("offer %d accepted outside range [%d..%d]", amount, listPrice/2, listPrice)
					}
					offerIDs = append(offerIDs, offer.ID)
				} else if inRange && !errors.Is(err, domain.ErrThreadAlreadySettled) {
					rt.Fatalf("in-range offer %d rejected: %v", amount, err)
				}
			case 1, 2:
				if len(offerIDs) == 0 {
					continue
				}
				id := offerIDs[rapid.IntRange(0, len(offerIDs)-1).Draw(rt, "offer")]
				if action == 1 {
					_, _ = f.svc.AcceptOffer(ctx, f.threadID, id, actor)
				} else {
					_, _ = f.svc.RejectOffer(ctx, f.threadID, id, actor)
				}
			}
		}

		thread, err := f.threadRepo.GetThreadByID(ctx, f.threadID)
		if err != nil {
			rt.Fatalf("GetThreadByID: %v", err)
		}
		acceptedCount := 0
		for _, o := range thread.Offers {
			if o.Status == domain.OfferStatusAccepted {
				acceptedCount++
			}
		}
		if acceptedCount > 1 {
			rt.Fatalf("thread holds %d accepted offers", acceptedCount)
		}
		if thread.Settled() != (acceptedCount == 1) {
			rt.Fatalf("settled = %v but accepted count = %d", thread.Settled(), acceptedCount)
		}
	})
}
