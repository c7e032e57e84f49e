package negotiation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"campusmarket/internal/config"
	"campusmarket/internal/domain"
	"campusmarket/internal/repository/listing_repo"
	"campusmarket/internal/repository/thread_repo"
	"campusmarket/internal/util"
)

var (
	ErrThreadNotFound  = fmt.Errorf("thread: %w", domain.ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing: %w", domain.ErrNotFound)
	ErrOfferNotFound   = fmt.Errorf("offer: %w", domain.ErrNotFound)
	ErrEmptyMessage    = errors.New("message text is empty")
)

// NegotiationService tracks the offers and messages exchanged between a
// buyer and a seller over a single listing. Every mutation reads the
// thread, applies the change to the copy and writes it back; a stale
// version surfaces as domain.ErrConflict and the caller re-reads and
// retries.
type NegotiationService interface {
	OpenThread(ctx context.Context, listingID, buyerID string) (*ThreadResponse, error)
	SendMessage(ctx context.Context, threadID, sender, text string) (*ThreadResponse, error)
	SubmitOffer(ctx context.Context, threadID, sender string, amount int64) (*OfferResponse, error)
	AcceptOffer(ctx context.Context, threadID, offerID, actor string) (*OfferResponse, error)
	RejectOffer(ctx context.Context, threadID, offerID, actor string) (*OfferResponse, error)
	GetThread(ctx context.Context, threadID string) (*ThreadResponse, error)
	GetThreadsByUserID(ctx context.Context, userID string) ([]*ThreadResponse, error)
}

type negotiationService struct {
	threadRepo  thread_repo.ThreadRepository
	listingRepo listing_repo.ListingRepository
	policy      config.OfferPolicy
	logger      *zap.Logger
}

func NewNegotiationService(
	threadRepo thread_repo.ThreadRepository,
	listingRepo listing_repo.ListingRepository,
	policy config.OfferPolicy,
	logger *zap.Logger,
) NegotiationService {
	return &negotiationService{
		threadRepo:  threadRepo,
		listingRepo: listingRepo,
		policy:      policy,
		logger:      logger,
	}
}

func (s *negotiationService) OpenThread(ctx context.Context, listingID, buyerID string) (*ThreadResponse, error) {
	listing, err := s.listingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		s.logger.Error("Failed to load listing for thread", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	if buyerID == listing.SellerID {
		return nil, fmt.Errorf("seller cannot open a thread on own listing: %w", domain.ErrInvalidTransition)
	}

	existing, err := s.threadRepo.GetThreadByListingAndBuyer(ctx, listingID, buyerID)
	if err == nil {
		return mapThreadToResponse(existing), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	thread := domain.NewThread(util.GenerateUUID(), listing, buyerID)
	if err := s.threadRepo.CreateThread(ctx, thread); err != nil {
		s.logger.Error("Failed to create thread", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Thread opened",
		zap.String("thread_id", thread.ID),
		zap.String("listing_id", listingID),
		zap.String("buyer_id", buyerID))
	return mapThreadToResponse(thread), nil
}

func (s *negotiationService) SendMessage(ctx context.Context, threadID, sender, text string) (*ThreadResponse, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsParty(sender) {
		return nil, fmt.Errorf("sender %s is not a thread party: %w", sender, domain.ErrInvalidTransition)
	}

	thread.AppendMessage(util.GenerateUUID(), sender, text)
	if err := s.threadRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}
	return mapThreadToResponse(thread), nil
}

func (s *negotiationService) SubmitOffer(ctx context.Context, threadID, sender string, amount int64) (*OfferResponse, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.IsParty(sender) {
		return nil, fmt.Errorf("sender %s is not a thread party: %w", sender, domain.ErrInvalidTransition)
	}
	if thread.Settled() {
		return nil, domain.ErrThreadAlreadySettled
	}
	if err := s.checkAmount(amount, thread.ListPrice); err != nil {
		s.logger.Debug("Offer amount rejected",
			zap.String("thread_id", threadID),
			zap.Int64("amount", amount),
			zap.Int64("list_price", thread.ListPrice))
		return nil, err
	}

	offer := thread.AppendOffer(util.GenerateUUID(), sender, amount)
	if err := s.threadRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}
	s.logger.Info("Offer submitted",
		zap.String("thread_id", threadID),
		zap.String("offer_id", offer.ID),
		zap.Int64("amount", amount))
	return mapOfferToResponse(thread.ID, offer), nil
}

func (s *negotiationService) AcceptOffer(ctx context.Context, threadID, offerID, actor string) (*OfferResponse, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	offer, err := s.checkActionable(thread, offerID, actor)
	if err != nil {
		return nil, err
	}
	if err := offer.Accept(); err != nil {
		return nil, err
	}
	thread.AcceptedOfferID = offer.ID

	if s.policy.Supersede == config.SupersedeAutoReject {
		for _, o := range thread.Offers {
			if o.ID != offer.ID && o.Status == domain.OfferStatusPending {
				_ = o.Reject()
			}
		}
	}

	if err := s.threadRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}
	s.logger.Info("Offer accepted",
		zap.String("thread_id", threadID),
		zap.String("offer_id", offerID),
		zap.Int64("amount", offer.Amount))
	return mapOfferToResponse(thread.ID, offer), nil
}

func (s *negotiationService) RejectOffer(ctx context.Context, threadID, offerID, actor string) (*OfferResponse, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	offer, err := s.checkActionable(thread, offerID, actor)
	if err != nil {
		return nil, err
	}
	if err := offer.Reject(); err != nil {
		return nil, err
	}

	if err := s.threadRepo.UpdateThread(ctx, thread); err != nil {
		return nil, err
	}
	s.logger.Info("Offer rejected",
		zap.String("thread_id", threadID),
		zap.String("offer_id", offerID))
	return mapOfferToResponse(thread.ID, offer), nil
}

func (s *negotiationService) GetThread(ctx context.Context, threadID string) (*ThreadResponse, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return mapThreadToResponse(thread), nil
}

func (s *negotiationService) GetThreadsByUserID(ctx context.Context, userID string) ([]*ThreadResponse, error) {
	threads, err := s.threadRepo.GetThreadsByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list threads for user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	responses := make([]*ThreadResponse, len(threads))
	for i, t := range threads {
		responses[i] = mapThreadToResponse(t)
	}
	return responses, nil
}

func (s *negotiationService) getThread(ctx context.Context, threadID string) (*domain.Thread, error) {
	thread, err := s.threadRepo.GetThreadByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		s.logger.Error("Failed to load thread", zap.String("thread_id", threadID), zap.Error(err))
		return nil, err
	}
	return thread, nil
}

// checkAmount enforces the configured admissible range relative to the
// thread's list-price snapshot.
func (s *negotiationService) checkAmount(amount, listPrice int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	a := float64(amount)
	if a < s.policy.MinRatio*float64(listPrice) || a > s.policy.MaxRatio*float64(listPrice) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// checkActionable runs the shared accept/reject preconditions. Precedence:
// unknown offer, then thread settled by a different offer, then actor
// checks. A party acting on its own offer is an invalid transition, as is
// a non-party acting at all.
func (s *negotiationService) checkActionable(thread *domain.Thread, offerID, actor string) (*domain.Offer, error) {
	offer := thread.OfferByID(offerID)
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if thread.Settled() && thread.AcceptedOfferID != offerID {
		return nil, domain.ErrThreadAlreadySettled
	}
	if !thread.IsParty(actor) || actor == offer.Sender {
		return nil, domain.ErrInvalidTransition
	}
	return offer, nil
}

func mapOfferToResponse(threadID string, offer *domain.Offer) *OfferResponse {
	return &OfferResponse{
		ID:        offer.ID,
		ThreadID:  threadID,
		Sender:    offer.Sender,
		Amount:    offer.Amount,
		Status:    string(offer.Status),
		Seq:       offer.Seq,
		CreatedAt: offer.CreatedAt.Format(time.RFC3339),
	}
}

func mapThreadToResponse(thread *domain.Thread) *ThreadResponse {
	entries := make([]*EntryResponse, 0, len(thread.Offers)+len(thread.Messages))
	for _, o := range thread.Offers {
		entries = append(entries, &EntryResponse{
			Kind:      entryKindOffer,
			ID:        o.ID,
			Sender:    o.Sender,
			Seq:       o.Seq,
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
			Amount:    o.Amount,
			Status:    string(o.Status),
		})
	}
	for i := range thread.Messages {
		m := &thread.Messages[i]
		entries = append(entries, &EntryResponse{
			Kind:      entryKindMessage,
			ID:        m.ID,
			Sender:    m.Sender,
			Seq:       m.Seq,
			CreatedAt: m.SentAt.Format(time.RFC3339),
			Text:      m.Text,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })

	return &ThreadResponse{
		ID:              thread.ID,
		ListingID:       thread.ListingID,
		BuyerID:         thread.BuyerID,
		SellerID:        thread.SellerID,
		ListPrice:       thread.ListPrice,
		Settled:         thread.Settled(),
		AcceptedOfferID: thread.AcceptedOfferID,
		Entries:         entries,
		CreatedAt:       thread.CreatedAt.Format(time.RFC3339),
	}
}
