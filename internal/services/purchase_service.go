// internal/services/purchase_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/repository"
)

// PurchaseService owns the purchase lifecycle:
//
//	awaiting_seller --fulfill--> completed --confirm--> completed+confirmed
//	awaiting_seller --cancel/expiry--> cancelled (coins refunded)
//
// Every transition is claimed with a guarded UPDATE inside a transaction, so
// concurrent fulfill/cancel/sweep calls resolve to exactly one winner and coins
// are neither lost nor duplicated.
type PurchaseService struct {
	store    repository.Store
	notifier Notifier
	cfg      config.MarketplaceConfig
}

func NewPurchaseService(store repository.Store, notifier Notifier, cfg config.MarketplaceConfig) *PurchaseService {
	return &PurchaseService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Create places an order: the buyer's wallet is debited by the listing price
// and the purchase row is created in the same transaction. The amount is
// snapshotted from the listing at this moment and never re-read.
func (s *PurchaseService) Create(ctx context.Context, buyerID, listingID uuid.UUID) (*models.Purchase, error) {
	listing, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !listing.InStock {
		return nil, apperrors.NewInvalidState("listing is out of stock")
	}
	if listing.SellerID == buyerID {
		return nil, fmt.Errorf("cannot purchase own listing: %w", apperrors.ErrUnauthorized)
	}

	purchase := &models.Purchase{
		ListingID: listing.ID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		Amount:    listing.Price,
		Status:    models.PurchaseStatusAwaitingSeller,
	}

	err = s.store.InTransaction(ctx, func(tx repository.Store) error {
		debited, err := tx.Wallets().DebitIfSufficient(ctx, buyerID, listing.Price)
		if err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}
		if !debited {
			wallet, werr := tx.Wallets().GetOrCreate(ctx, buyerID)
			available := decimal.Zero
			if werr == nil {
				available = wallet.Coins
			}
			return &apperrors.InsufficientFundsError{
				Required:  listing.Price,
				Available: available,
			}
		}

		return tx.Purchases().Create(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"buyer_id":    buyerID,
		"listing_id":  listingID,
		"amount":      purchase.Amount,
	}).Info("Purchase created")

	go s.notifySellerNewOrder(purchase, listing.Title)

	return purchase, nil
}

// Fulfill is the seller delivering the account details. It moves the purchase
// from awaiting_seller to completed; the details are written exactly once, by
// whoever wins the claim.
func (s *PurchaseService) Fulfill(ctx context.Context, sellerID, purchaseID uuid.UUID, accountDetails string) (*models.Purchase, error) {
	if strings.TrimSpace(accountDetails) == "" {
		return nil, fmt.Errorf("account details are required")
	}

	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.SellerID != sellerID {
		return nil, fmt.Errorf("purchase belongs to another seller: %w", apperrors.ErrUnauthorized)
	}

	won, err := s.store.Purchases().MarkCompletedIfAwaiting(ctx, purchaseID, accountDetails)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.NewInvalidState("purchase is %s, cannot fulfill", s.currentStatus(ctx, purchaseID))
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchaseID,
		"seller_id":   sellerID,
	}).Info("Purchase fulfilled")

	go s.notifyBuyerFulfilled(purchaseID)

	updated, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Confirm is the buyer accepting a completed purchase. It releases the payout:
// the seller's ledger is credited with the amount minus the platform fee, the
// seller gains a vouch, and the listing's sales counter goes up — all in one
// transaction. Confirming twice fails on the claim, so the payout cannot be
// applied twice.
func (s *PurchaseService) Confirm(ctx context.Context, buyerID, purchaseID uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.BuyerID != buyerID {
		return nil, fmt.Errorf("purchase belongs to another buyer: %w", apperrors.ErrUnauthorized)
	}

	seller, err := s.store.Users().GetByID(ctx, purchase.SellerID)
	if err != nil {
		return nil, err
	}

	fee := s.platformFee(purchase.Amount, seller.FeeExempt)

	err = s.store.InTransaction(ctx, func(tx repository.Store) error {
		won, err := tx.Purchases().MarkConfirmedIfCompleted(ctx, purchaseID)
		if err != nil {
			return err
		}
		if !won {
			if purchase.IsConfirmed {
				return apperrors.NewInvalidState("purchase already confirmed")
			}
			return apperrors.NewInvalidState("purchase is %s, cannot confirm", s.currentStatus(ctx, purchaseID))
		}

		if err := tx.SellerBalances().Credit(ctx, purchase.SellerID, purchase.Amount, fee); err != nil {
			return fmt.Errorf("credit seller balance: %w", err)
		}

		if err := tx.Users().IncrementVouches(ctx, purchase.SellerID); err != nil {
			return fmt.Errorf("increment vouches: %w", err)
		}

		return tx.Listings().IncrementSales(ctx, purchase.ListingID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchaseID,
		"seller_id":   purchase.SellerID,
		"gross":       purchase.Amount,
		"fee":         fee,
	}).Info("Purchase confirmed, seller credited")

	updated, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel is the seller declining an order they cannot fulfill. The full amount
// goes back to the buyer's wallet in the same transaction as the state change.
func (s *PurchaseService) Cancel(ctx context.Context, sellerID, purchaseID uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.SellerID != sellerID {
		return nil, fmt.Errorf("purchase belongs to another seller: %w", apperrors.ErrUnauthorized)
	}

	if err := s.refund(ctx, purchase); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"purchase_id": purchaseID,
		"seller_id":   sellerID,
	}).Info("Purchase cancelled by seller")

	go s.notifyBuyerRefunded(purchase, "seller cancelled the order")

	updated, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SweepExpired refunds every awaiting_seller purchase older than the configured
// expiry window. Each purchase is processed in its own transaction; one bad row
// does not block the rest, and a purchase fulfilled mid-sweep simply loses the
// claim and is skipped.
func (s *PurchaseService) SweepExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.PurchaseExpiry)

	expired, err := s.store.Purchases().FindExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find expired purchases: %w", err)
	}

	refunded := 0
	for i := range expired {
		purchase := expired[i]
		if err := s.refund(ctx, &purchase); err != nil {
			if apperrors.IsInvalidState(err) {
				continue // lost the claim to a concurrent fulfill/cancel
			}
			logrus.WithError(err).WithField("purchase_id", purchase.ID).
				Error("Failed to refund expired purchase")
			continue
		}
		refunded++
		go s.notifyBuyerRefunded(&purchase, "seller did not deliver within 1 hour")
	}

	if refunded > 0 {
		logrus.WithField("count", refunded).Info("Expired purchases refunded")
	}
	return refunded, nil
}

// refund claims awaiting_seller -> cancelled and credits the buyer's wallet
// atomically. Exactly one caller can win the claim, so the refund is applied
// at most once no matter how many paths race.
func (s *PurchaseService) refund(ctx context.Context, purchase *models.Purchase) error {
	return s.store.InTransaction(ctx, func(tx repository.Store) error {
		won, err := tx.Purchases().MarkCancelledIfAwaiting(ctx, purchase.ID)
		if err != nil {
			return err
		}
		if !won {
			return apperrors.NewInvalidState("purchase is %s, cannot cancel", s.currentStatus(ctx, purchase.ID))
		}

		return tx.Wallets().Credit(ctx, purchase.BuyerID, purchase.Amount)
	})
}

// GetByID enforces visibility: buyer, seller, and admins can see the purchase.
// AccountDetails rides along only for the buyer and admins.
func (s *PurchaseService) GetByID(ctx context.Context, requesterID uuid.UUID, role models.UserRole, purchaseID uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	isBuyer := purchase.BuyerID == requesterID
	isSeller := purchase.SellerID == requesterID
	if !isBuyer && !isSeller && role != models.UserRoleAdmin {
		return nil, fmt.Errorf("not a party to this purchase: %w", apperrors.ErrUnauthorized)
	}

	if isSeller && role != models.UserRoleAdmin {
		purchase.AccountDetails = ""
	}
	return purchase, nil
}

func (s *PurchaseService) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	return s.store.Purchases().ListByBuyer(ctx, buyerID)
}

func (s *PurchaseService) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	purchases, err := s.store.Purchases().ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].AccountDetails = ""
	}
	return purchases, nil
}

// platformFee rounds to centavos; fee-exempt sellers keep the full amount.
func (s *PurchaseService) platformFee(amount decimal.Decimal, feeExempt bool) decimal.Decimal {
	if feeExempt {
		return decimal.Zero
	}
	return amount.Mul(s.cfg.FeeRate()).Round(2)
}

// currentStatus is best-effort flavoring for invalid-transition messages.
func (s *PurchaseService) currentStatus(ctx context.Context, purchaseID uuid.UUID) models.PurchaseStatus {
	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		return "unknown"
	}
	return purchase.Status
}

func (s *PurchaseService) notifySellerNewOrder(purchase *models.Purchase, listingTitle string) {
	seller, err := s.store.Users().GetByID(context.Background(), purchase.SellerID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load seller for notification")
		return
	}
	s.notifier.NotifySellerNewOrder(seller, purchase, listingTitle)
}

func (s *PurchaseService) notifyBuyerFulfilled(purchaseID uuid.UUID) {
	ctx := context.Background()
	purchase, err := s.store.Purchases().GetByID(ctx, purchaseID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load purchase for notification")
		return
	}
	buyer, err := s.store.Users().GetByID(ctx, purchase.BuyerID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load buyer for notification")
		return
	}
	s.notifier.NotifyBuyerFulfilled(buyer, purchase, purchase.Listing.Title)
}

func (s *PurchaseService) notifyBuyerRefunded(purchase *models.Purchase, reason string) {
	buyer, err := s.store.Users().GetByID(context.Background(), purchase.BuyerID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load buyer for notification")
		return
	}
	s.notifier.NotifyBuyerRefunded(buyer, purchase, reason)
}
