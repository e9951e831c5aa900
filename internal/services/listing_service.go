// internal/services/listing_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/repository"
)

type ListingService struct {
	store repository.Store
}

func NewListingService(store repository.Store) *ListingService {
	return &ListingService{store: store}
}

type CreateListingInput struct {
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Images      []string
	Tags        []string
}

func (s *ListingService) Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*models.Listing, error) {
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("price must be positive")
	}

	listing := &models.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		InStock:     true,
		Images:      pq.StringArray(input.Images),
		Tags:        pq.StringArray(input.Tags),
	}

	if err := s.store.Listings().Create(ctx, listing); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"listing_id": listing.ID,
		"seller_id":  sellerID,
		"price":      listing.Price,
	}).Info("Listing created")

	return listing, nil
}

func (s *ListingService) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return s.store.Listings().GetByID(ctx, id)
}

func (s *ListingService) Browse(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.store.Listings().List(ctx, filter)
}

// SetStock is how sellers pull a listing off the shelf (or put it back). Only
// the owning seller can flip it.
func (s *ListingService) SetStock(ctx context.Context, sellerID, listingID uuid.UUID, inStock bool) error {
	listing, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		return fmt.Errorf("listing belongs to another seller: %w", apperrors.ErrUnauthorized)
	}

	return s.store.Listings().SetStock(ctx, listingID, inStock)
}
