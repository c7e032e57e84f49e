package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campusmarket/internal/app/catalog"
	"campusmarket/internal/app/negotiation"
	"campusmarket/internal/app/orders"
	"campusmarket/internal/config"
	"campusmarket/internal/domain"
	listing_memory "campusmarket/internal/repository/listing_repo/memory"
	order_memory "campusmarket/internal/repository/order_repo/memory"
	thread_memory "campusmarket/internal/repository/thread_repo/memory"
)

// main wires the marketplace core the way the presentation layer would and
// walks one negotiation from first offer to review, so the module can be
// exercised end to end without any surrounding app.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("Campus marketplace core starting...")

	listingRepo := listing_memory.NewListingRepository(logger)
	threadRepo := thread_memory.NewThreadRepository(logger)
	orderRepo := order_memory.NewOrderRepository(logger)

	catalogSvc := catalog.NewCatalogService(listingRepo, logger)
	negotiationSvc := negotiation.NewNegotiationService(threadRepo, listingRepo, cfg.Offer, logger)
	orderSvc := orders.NewOrderService(orderRepo, listingRepo, threadRepo, logger)

	ctx := context.Background()

	calculator, err := catalogSvc.CreateListing(ctx, &catalog.CreateListingRequest{
		SellerID:    "seller-arjun",
		Title:       "Scientific Calculator TI-84",
		Description: "Barely used graphing calculator, all functions working.",
		Price:       1800,
		Condition:   string(domain.ConditionGood),
		Category:    "Electronics",
		Department:  "All",
	})
	if err != nil {
		logger.Fatal("Failed to seed listing", zap.Error(err))
	}
	if _, err := catalogSvc.CreateListing(ctx, &catalog.CreateListingRequest{
		SellerID:    "seller-priya",
		Title:       "Engineering Mechanics Textbook",
		Description: "Third edition, minor highlighting in early chapters.",
		Price:       1200,
		Condition:   string(domain.ConditionLikeNew),
		Category:    "Books",
		Department:  "Mechanical",
	}); err != nil {
		logger.Fatal("Failed to seed listing", zap.Error(err))
	}

	books, err := catalogSvc.BrowseListings(ctx, &domain.ListingFilter{Category: "Books"})
	if err != nil {
		logger.Fatal("Browse failed", zap.Error(err))
	}
	logger.Info("Browse by category", zap.String("category", "Books"), zap.Int("results", len(books)))

	thread, err := negotiationSvc.OpenThread(ctx, calculator.ID, "buyer-meera")
	if err != nil {
		logger.Fatal("Failed to open thread", zap.Error(err))
	}
	if _, err := negotiationSvc.SendMessage(ctx, thread.ID, "buyer-meera", "Hi! Is the calculator still available?"); err != nil {
		logger.Fatal("Failed to send message", zap.Error(err))
	}

	firstOffer, err := negotiationSvc.SubmitOffer(ctx, thread.ID, "buyer-meera", 1500)
	if err != nil {
		logger.Fatal("Failed to submit offer", zap.Error(err))
	}
	counter, err := negotiationSvc.SubmitOffer(ctx, thread.ID, "seller-arjun", 1650)
	if err != nil {
		logger.Fatal("Failed to submit counter", zap.Error(err))
	}
	accepted, err := negotiationSvc.AcceptOffer(ctx, thread.ID, counter.ID, "buyer-meera")
	if err != nil {
		logger.Fatal("Failed to accept counter", zap.Error(err))
	}
	logger.Info("Negotiation settled",
		zap.String("thread_id", thread.ID),
		zap.Int64("first_offer", firstOffer.Amount),
		zap.Int64("agreed_price", accepted.Amount))

	order, err := orderSvc.Reserve(ctx, calculator.ID, "buyer-meera")
	if err != nil {
		logger.Fatal("Failed to reserve", zap.Error(err))
	}
	if _, err := orderSvc.Complete(ctx, order.ID, "buyer-meera"); err != nil {
		logger.Fatal("Failed to complete order", zap.Error(err))
	}
	reviewed, err := orderSvc.SubmitReview(ctx, order.ID, "buyer-meera", 5, "Great seller, quick handover at the library.")
	if err != nil {
		logger.Fatal("Failed to submit review", zap.Error(err))
	}
	logger.Info("Order finished",
		zap.String("order_id", reviewed.ID),
		zap.String("status", reviewed.Status),
		zap.Int64("price", reviewed.Price),
		zap.Int("rating", reviewed.Review.Rating))
}
