// internal/repository/store.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gamevault/gamevault-backend/internal/database"
	"github.com/gamevault/gamevault-backend/internal/models"
)

// Store bundles the repositories behind one handle so services can run
// multi-entity mutations inside a single transaction. InTransaction hands the
// callback a Store bound to the transaction; everything done through it commits
// or rolls back as a unit.
type Store interface {
	Users() UserRepository
	Listings() ListingRepository
	Purchases() PurchaseRepository
	Wallets() WalletRepository
	SellerBalances() SellerBalanceRepository
	Payments() PaymentRepository
	Withdrawals() WithdrawalRepository

	InTransaction(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	// IncrementVouches bumps vouch_count by one and flips has_vouches on.
	IncrementVouches(ctx context.Context, id uuid.UUID) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
	SetStock(ctx context.Context, id uuid.UUID, inStock bool) error
	IncrementSales(ctx context.Context, id uuid.UUID) error
}

type ListingFilter struct {
	SellerID    *uuid.UUID
	Category    string
	Search      string
	InStockOnly bool
	Offset      int
	Limit       int
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error)
	// FindExpired returns awaiting_seller purchases created before cutoff (UTC).
	FindExpired(ctx context.Context, cutoff time.Time) ([]models.Purchase, error)

	// Claim methods carry the source-state precondition in the UPDATE itself.
	// They report whether this caller won the transition; a false return with a
	// nil error means someone else already moved the row.
	MarkCompletedIfAwaiting(ctx context.Context, id uuid.UUID, accountDetails string) (bool, error)
	MarkCancelledIfAwaiting(ctx context.Context, id uuid.UUID) (bool, error)
	MarkConfirmedIfCompleted(ctx context.Context, id uuid.UUID) (bool, error)
}

type WalletRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	// DebitIfSufficient applies the debit only when coins >= amount, in one
	// guarded UPDATE. Returns false when the balance could not cover it.
	DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)
}

type SellerBalanceRepository interface {
	GetOrCreate(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error)
	// Credit applies one confirmed sale: gross_sales += gross,
	// available_balance += gross - fee, total_fees += fee.
	Credit(ctx context.Context, sellerID uuid.UUID, gross, fee decimal.Decimal) error
	// DeductIfSufficient withdraws from available_balance with the sufficiency
	// check in the same UPDATE.
	DeductIfSufficient(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error)
	// AddAvailable restores available_balance (rejected withdrawal).
	AddAvailable(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	MarkReviewedIfPending(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reviewerID uuid.UUID, notes string) (bool, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Withdrawal, error)
	ListByStatus(ctx context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error)
	MarkProcessedIfPending(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, adminID uuid.UUID, notes string) (bool, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                   { return &userRepository{db: s.db} }
func (s *gormStore) Listings() ListingRepository             { return &listingRepository{db: s.db} }
func (s *gormStore) Purchases() PurchaseRepository           { return &purchaseRepository{db: s.db} }
func (s *gormStore) Wallets() WalletRepository               { return &walletRepository{db: s.db} }
func (s *gormStore) SellerBalances() SellerBalanceRepository { return &sellerBalanceRepository{db: s.db} }
func (s *gormStore) Payments() PaymentRepository             { return &paymentRepository{db: s.db} }
func (s *gormStore) Withdrawals() WithdrawalRepository       { return &withdrawalRepository{db: s.db} }

func (s *gormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
