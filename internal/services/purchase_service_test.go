// internal/services/purchase_service_test.go
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/models"
)

type PurchaseServiceTestSuite struct {
	suite.Suite
	store    *fakeStore
	notifier *recordingNotifier
	service  *PurchaseService
	ctx      context.Context

	buyer   *models.User
	seller  *models.User
	listing *models.Listing
}

func (s *PurchaseServiceTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.notifier = &recordingNotifier{}
	s.service = NewPurchaseService(s.store, s.notifier, config.MarketplaceConfig{
		PlatformFeePercent: 5.0,
		PurchaseExpiry:     time.Hour,
		SweepInterval:      5 * time.Minute,
	})
	s.ctx = context.Background()

	s.buyer = &models.User{Username: "buyer1", Email: "buyer1@test.com", Role: models.UserRoleBuyer}
	s.seller = &models.User{Username: "seller1", Email: "seller1@test.com", Role: models.UserRoleSeller}
	require.NoError(s.T(), s.store.Users().Create(s.ctx, s.buyer))
	require.NoError(s.T(), s.store.Users().Create(s.ctx, s.seller))

	s.listing = &models.Listing{
		SellerID: s.seller.ID,
		Title:    "ML Account 60 Skins",
		Category: "mobile-legends",
		Price:    decimal.NewFromInt(100),
		InStock:  true,
	}
	require.NoError(s.T(), s.store.Listings().Create(s.ctx, s.listing))

	require.NoError(s.T(), s.store.Wallets().Credit(s.ctx, s.buyer.ID, decimal.NewFromInt(150)))
}

func (s *PurchaseServiceTestSuite) walletCoins(userID uuid.UUID) decimal.Decimal {
	wallet, err := s.store.Wallets().GetOrCreate(s.ctx, userID)
	require.NoError(s.T(), err)
	return wallet.Coins
}

func (s *PurchaseServiceTestSuite) TestCreateDebitsWalletAndSnapshotsAmount() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), models.PurchaseStatusAwaitingSeller, purchase.Status)
	assert.True(s.T(), purchase.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(50)))
}

func (s *PurchaseServiceTestSuite) TestCreateInsufficientFundsLeavesWalletUntouched() {
	expensive := &models.Listing{
		SellerID: s.seller.ID,
		Title:    "Rare account",
		Price:    decimal.NewFromInt(500),
		InStock:  true,
	}
	require.NoError(s.T(), s.store.Listings().Create(s.ctx, expensive))

	_, err := s.service.Create(s.ctx, s.buyer.ID, expensive.ID)
	require.Error(s.T(), err)

	var insufficientErr *apperrors.InsufficientFundsError
	require.True(s.T(), errors.As(err, &insufficientErr))
	assert.True(s.T(), insufficientErr.Required.Equal(decimal.NewFromInt(500)))
	assert.True(s.T(), insufficientErr.Available.Equal(decimal.NewFromInt(150)))

	// Rollback: wallet untouched, no purchase row
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(150)))
	purchases, err := s.store.Purchases().ListByBuyer(s.ctx, s.buyer.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), purchases)
}

func (s *PurchaseServiceTestSuite) TestCreateOutOfStockRejected() {
	require.NoError(s.T(), s.store.Listings().SetStock(s.ctx, s.listing.ID, false))

	_, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	assert.True(s.T(), apperrors.IsInvalidState(err))
}

func (s *PurchaseServiceTestSuite) TestCreateOwnListingRejected() {
	_, err := s.service.Create(s.ctx, s.seller.ID, s.listing.ID)
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *PurchaseServiceTestSuite) TestFulfillDeliversAccountDetails() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	fulfilled, err := s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), models.PurchaseStatusCompleted, fulfilled.Status)
	assert.Equal(s.T(), "user:pass123", fulfilled.AccountDetails)
	assert.False(s.T(), fulfilled.IsConfirmed)
}

func (s *PurchaseServiceTestSuite) TestFulfillByWrongSellerRejected() {
	other := &models.User{Username: "seller2", Email: "seller2@test.com", Role: models.UserRoleSeller}
	require.NoError(s.T(), s.store.Users().Create(s.ctx, other))

	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	_, err = s.service.Fulfill(s.ctx, other.ID, purchase.ID, "user:pass123")
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

func (s *PurchaseServiceTestSuite) TestFulfillTwiceFailsOnClaim() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "first")
	require.NoError(s.T(), err)

	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "second")
	assert.True(s.T(), apperrors.IsInvalidState(err))

	// Details from the first delivery are untouched
	stored, err := s.store.Purchases().GetByID(s.ctx, purchase.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "first", stored.AccountDetails)
}

func (s *PurchaseServiceTestSuite) TestConfirmCreditsSellerLedger() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	confirmed, err := s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), confirmed.IsConfirmed)
	require.NotNil(s.T(), confirmed.ConfirmedAt)

	balance, err := s.store.SellerBalances().GetOrCreate(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), balance.GrossSales.Equal(decimal.NewFromInt(100)))
	assert.True(s.T(), balance.AvailableBalance.Equal(decimal.NewFromInt(95)))
	assert.True(s.T(), balance.TotalFees.Equal(decimal.NewFromInt(5)))

	seller, err := s.store.Users().GetByID(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), seller.VouchCount)
	assert.True(s.T(), seller.HasVouches)

	listing, err := s.store.Listings().GetByID(s.ctx, s.listing.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), listing.SalesCount)
}

func (s *PurchaseServiceTestSuite) TestConfirmFeeExemptSellerKeepsFullAmount() {
	s.store.users[s.seller.ID].FeeExempt = true

	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	_, err = s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	require.NoError(s.T(), err)

	balance, err := s.store.SellerBalances().GetOrCreate(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), balance.AvailableBalance.Equal(decimal.NewFromInt(100)))
	assert.True(s.T(), balance.TotalFees.Equal(decimal.Zero))
}

func (s *PurchaseServiceTestSuite) TestConfirmTwiceCreditsOnlyOnce() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	_, err = s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	require.NoError(s.T(), err)

	_, err = s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	assert.True(s.T(), apperrors.IsInvalidState(err))

	balance, err := s.store.SellerBalances().GetOrCreate(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), balance.GrossSales.Equal(decimal.NewFromInt(100)))

	seller, err := s.store.Users().GetByID(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), seller.VouchCount)
}

func (s *PurchaseServiceTestSuite) TestConfirmBeforeFulfillRejected() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	_, err = s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	assert.True(s.T(), apperrors.IsInvalidState(err))
}

func (s *PurchaseServiceTestSuite) TestCancelRefundsBuyerExactlyOnce() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(50)))

	cancelled, err := s.service.Cancel(s.ctx, s.seller.ID, purchase.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PurchaseStatusCancelled, cancelled.Status)
	require.NotNil(s.T(), cancelled.CancelledAt)
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(150)))

	// Second cancel loses the claim; no second refund
	_, err = s.service.Cancel(s.ctx, s.seller.ID, purchase.ID)
	assert.True(s.T(), apperrors.IsInvalidState(err))
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(150)))
}

func (s *PurchaseServiceTestSuite) TestCancelAfterFulfillRejected() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	_, err = s.service.Cancel(s.ctx, s.seller.ID, purchase.ID)
	assert.True(s.T(), apperrors.IsInvalidState(err))
	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(50)))
}

func (s *PurchaseServiceTestSuite) TestAmountSnapshotSurvivesPriceChange() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	// Seller reprices the listing after the order was placed
	s.store.listings[s.listing.ID].Price = decimal.NewFromInt(999)

	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)
	_, err = s.service.Confirm(s.ctx, s.buyer.ID, purchase.ID)
	require.NoError(s.T(), err)

	balance, err := s.store.SellerBalances().GetOrCreate(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), balance.GrossSales.Equal(decimal.NewFromInt(100)))
}

func (s *PurchaseServiceTestSuite) TestSweepRefundsOnlyStaleAwaitingOrders() {
	stale := &models.Purchase{
		BaseModel: models.BaseModel{CreatedAt: time.Now().UTC().Add(-2 * time.Hour)},
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
		SellerID:  s.seller.ID,
		Amount:    decimal.NewFromInt(30),
		Status:    models.PurchaseStatusAwaitingSeller,
	}
	require.NoError(s.T(), s.store.Purchases().Create(s.ctx, stale))

	fresh, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)

	before := s.walletCoins(s.buyer.ID)

	count, err := s.service.SweepExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)

	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(before.Add(decimal.NewFromInt(30))))

	staleAfter, err := s.store.Purchases().GetByID(s.ctx, stale.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PurchaseStatusCancelled, staleAfter.Status)

	freshAfter, err := s.store.Purchases().GetByID(s.ctx, fresh.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.PurchaseStatusAwaitingSeller, freshAfter.Status)
}

func (s *PurchaseServiceTestSuite) TestSweepIsIdempotent() {
	stale := &models.Purchase{
		BaseModel: models.BaseModel{CreatedAt: time.Now().UTC().Add(-2 * time.Hour)},
		ListingID: s.listing.ID,
		BuyerID:   s.buyer.ID,
		SellerID:  s.seller.ID,
		Amount:    decimal.NewFromInt(30),
		Status:    models.PurchaseStatusAwaitingSeller,
	}
	require.NoError(s.T(), s.store.Purchases().Create(s.ctx, stale))

	count, err := s.service.SweepExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)

	count, err = s.service.SweepExpired(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, count)

	assert.True(s.T(), s.walletCoins(s.buyer.ID).Equal(decimal.NewFromInt(180)))
}

func (s *PurchaseServiceTestSuite) TestSellerViewHidesAccountDetails() {
	purchase, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, purchase.ID, "user:pass123")
	require.NoError(s.T(), err)

	buyerView, err := s.service.GetByID(s.ctx, s.buyer.ID, models.UserRoleBuyer, purchase.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "user:pass123", buyerView.AccountDetails)

	sellerView, err := s.service.GetByID(s.ctx, s.seller.ID, models.UserRoleSeller, purchase.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), sellerView.AccountDetails)

	stranger := &models.User{Username: "rando", Email: "rando@test.com", Role: models.UserRoleBuyer}
	require.NoError(s.T(), s.store.Users().Create(s.ctx, stranger))
	_, err = s.service.GetByID(s.ctx, stranger.ID, models.UserRoleBuyer, purchase.ID)
	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
}

// Coins leaving the buyer either sit on an open purchase or come back; the
// total across wallet + open orders + seller gross never drifts.
func (s *PurchaseServiceTestSuite) TestCoinConservationAcrossLifecycle() {
	first, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Fulfill(s.ctx, s.seller.ID, first.ID, "acct-1")
	require.NoError(s.T(), err)
	_, err = s.service.Confirm(s.ctx, s.buyer.ID, first.ID)
	require.NoError(s.T(), err)

	// Top up again so a second order fits in the remaining 50 coins.
	require.NoError(s.T(), s.store.Wallets().Credit(s.ctx, s.buyer.ID, decimal.NewFromInt(100)))

	second, err := s.service.Create(s.ctx, s.buyer.ID, s.listing.ID)
	require.NoError(s.T(), err)
	_, err = s.service.Cancel(s.ctx, s.seller.ID, second.ID)
	require.NoError(s.T(), err)

	wallet := s.walletCoins(s.buyer.ID)
	balance, err := s.store.SellerBalances().GetOrCreate(s.ctx, s.seller.ID)
	require.NoError(s.T(), err)

	// 250 issued = 150 back in wallet + 95 seller available + 5 platform fee
	total := wallet.Add(balance.AvailableBalance).Add(balance.TotalFees)
	assert.True(s.T(), total.Equal(decimal.NewFromInt(250)))
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}
