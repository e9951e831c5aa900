// internal/services/store_fake_test.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/repository"
)

// fakeStore is an in-memory Store for service tests. InTransaction snapshots
// the state and restores it when the callback fails, mirroring a rollback.
type fakeStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	listings    map[uuid.UUID]*models.Listing
	purchases   map[uuid.UUID]*models.Purchase
	wallets     map[uuid.UUID]*models.Wallet        // keyed by user ID
	balances    map[uuid.UUID]*models.SellerBalance // keyed by seller ID
	payments    map[uuid.UUID]*models.Payment
	withdrawals map[uuid.UUID]*models.Withdrawal
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*models.User),
		listings:    make(map[uuid.UUID]*models.Listing),
		purchases:   make(map[uuid.UUID]*models.Purchase),
		wallets:     make(map[uuid.UUID]*models.Wallet),
		balances:    make(map[uuid.UUID]*models.SellerBalance),
		payments:    make(map[uuid.UUID]*models.Payment),
		withdrawals: make(map[uuid.UUID]*models.Withdrawal),
	}
}

func (f *fakeStore) Users() repository.UserRepository                   { return &fakeUserRepo{f} }
func (f *fakeStore) Listings() repository.ListingRepository             { return &fakeListingRepo{f} }
func (f *fakeStore) Purchases() repository.PurchaseRepository           { return &fakePurchaseRepo{f} }
func (f *fakeStore) Wallets() repository.WalletRepository               { return &fakeWalletRepo{f} }
func (f *fakeStore) SellerBalances() repository.SellerBalanceRepository { return &fakeBalanceRepo{f} }
func (f *fakeStore) Payments() repository.PaymentRepository             { return &fakePaymentRepo{f} }
func (f *fakeStore) Withdrawals() repository.WithdrawalRepository       { return &fakeWithdrawalRepo{f} }

func (f *fakeStore) InTransaction(ctx context.Context, fn func(repository.Store) error) error {
	snapshot := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	users       map[uuid.UUID]models.User
	listings    map[uuid.UUID]models.Listing
	purchases   map[uuid.UUID]models.Purchase
	wallets     map[uuid.UUID]models.Wallet
	balances    map[uuid.UUID]models.SellerBalance
	payments    map[uuid.UUID]models.Payment
	withdrawals map[uuid.UUID]models.Withdrawal
}

func (f *fakeStore) snapshot() storeSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := storeSnapshot{
		users:       make(map[uuid.UUID]models.User, len(f.users)),
		listings:    make(map[uuid.UUID]models.Listing, len(f.listings)),
		purchases:   make(map[uuid.UUID]models.Purchase, len(f.purchases)),
		wallets:     make(map[uuid.UUID]models.Wallet, len(f.wallets)),
		balances:    make(map[uuid.UUID]models.SellerBalance, len(f.balances)),
		payments:    make(map[uuid.UUID]models.Payment, len(f.payments)),
		withdrawals: make(map[uuid.UUID]models.Withdrawal, len(f.withdrawals)),
	}
	for k, v := range f.users {
		s.users[k] = *v
	}
	for k, v := range f.listings {
		s.listings[k] = *v
	}
	for k, v := range f.purchases {
		s.purchases[k] = *v
	}
	for k, v := range f.wallets {
		s.wallets[k] = *v
	}
	for k, v := range f.balances {
		s.balances[k] = *v
	}
	for k, v := range f.payments {
		s.payments[k] = *v
	}
	for k, v := range f.withdrawals {
		s.withdrawals[k] = *v
	}
	return s
}

func (f *fakeStore) restore(s storeSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users = make(map[uuid.UUID]*models.User, len(s.users))
	for k, v := range s.users {
		v := v
		f.users[k] = &v
	}
	f.listings = make(map[uuid.UUID]*models.Listing, len(s.listings))
	for k, v := range s.listings {
		v := v
		f.listings[k] = &v
	}
	f.purchases = make(map[uuid.UUID]*models.Purchase, len(s.purchases))
	for k, v := range s.purchases {
		v := v
		f.purchases[k] = &v
	}
	f.wallets = make(map[uuid.UUID]*models.Wallet, len(s.wallets))
	for k, v := range s.wallets {
		v := v
		f.wallets[k] = &v
	}
	f.balances = make(map[uuid.UUID]*models.SellerBalance, len(s.balances))
	for k, v := range s.balances {
		v := v
		f.balances[k] = &v
	}
	f.payments = make(map[uuid.UUID]*models.Payment, len(s.payments))
	for k, v := range s.payments {
		v := v
		f.payments[k] = &v
	}
	f.withdrawals = make(map[uuid.UUID]*models.Withdrawal, len(s.withdrawals))
	for k, v := range s.withdrawals {
		v := v
		f.withdrawals[k] = &v
	}
}

// --- users ---

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user")
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("user")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("user")
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user, ok := r.s.users[id]; ok {
		now := time.Now().UTC()
		user.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) IncrementVouches(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return apperrors.NewNotFound("user")
	}
	user.VouchCount++
	user.HasVouches = true
	return nil
}

// --- listings ---

type fakeListingRepo struct{ s *fakeStore }

func (r *fakeListingRepo) Create(_ context.Context, listing *models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	listing.CreatedAt = time.Now().UTC()
	copied := *listing
	r.s.listings[listing.ID] = &copied
	return nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	listing, ok := r.s.listings[id]
	if !ok {
		return nil, apperrors.NewNotFound("listing")
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeListingRepo) List(_ context.Context, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Listing
	for _, listing := range r.s.listings {
		if filter.SellerID != nil && listing.SellerID != *filter.SellerID {
			continue
		}
		if filter.Category != "" && listing.Category != filter.Category {
			continue
		}
		if filter.InStockOnly && !listing.InStock {
			continue
		}
		out = append(out, *listing)
	}
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) SetStock(_ context.Context, id uuid.UUID, inStock bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	listing, ok := r.s.listings[id]
	if !ok {
		return apperrors.NewNotFound("listing")
	}
	listing.InStock = inStock
	return nil
}

func (r *fakeListingRepo) IncrementSales(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if listing, ok := r.s.listings[id]; ok {
		listing.SalesCount++
	}
	return nil
}

// --- purchases ---

type fakePurchaseRepo struct{ s *fakeStore }

func (r *fakePurchaseRepo) Create(_ context.Context, purchase *models.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}
	copied := *purchase
	r.s.purchases[purchase.ID] = &copied
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	purchase, ok := r.s.purchases[id]
	if !ok {
		return nil, apperrors.NewNotFound("purchase")
	}
	copied := *purchase
	return &copied, nil
}

func (r *fakePurchaseRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Purchase
	for _, p := range r.s.purchases {
		if p.BuyerID == buyerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Purchase
	for _, p := range r.s.purchases {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) FindExpired(_ context.Context, cutoff time.Time) ([]models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Purchase
	for _, p := range r.s.purchases {
		if p.Status == models.PurchaseStatusAwaitingSeller && p.CreatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) MarkCompletedIfAwaiting(_ context.Context, id uuid.UUID, accountDetails string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok || p.Status != models.PurchaseStatusAwaitingSeller {
		return false, nil
	}
	p.Status = models.PurchaseStatusCompleted
	p.AccountDetails = accountDetails
	return true, nil
}

func (r *fakePurchaseRepo) MarkCancelledIfAwaiting(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok || p.Status != models.PurchaseStatusAwaitingSeller {
		return false, nil
	}
	now := time.Now().UTC()
	p.Status = models.PurchaseStatusCancelled
	p.CancelledAt = &now
	return true, nil
}

func (r *fakePurchaseRepo) MarkConfirmedIfCompleted(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.purchases[id]
	if !ok || p.Status != models.PurchaseStatusCompleted || p.IsConfirmed {
		return false, nil
	}
	now := time.Now().UTC()
	p.IsConfirmed = true
	p.ConfirmedAt = &now
	return true, nil
}

// --- wallets ---

type fakeWalletRepo struct{ s *fakeStore }

func (r *fakeWalletRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wallet, ok := r.s.wallets[userID]
	if !ok {
		wallet = &models.Wallet{
			BaseModel: models.BaseModel{ID: uuid.New()},
			UserID:    userID,
			Coins:     decimal.Zero,
		}
		r.s.wallets[userID] = wallet
	}
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Get(_ context.Context, userID uuid.UUID) (*models.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wallet, ok := r.s.wallets[userID]
	if !ok {
		return nil, apperrors.NewNotFound("wallet")
	}
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Credit(_ context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wallet, ok := r.s.wallets[userID]
	if !ok {
		wallet = &models.Wallet{
			BaseModel: models.BaseModel{ID: uuid.New()},
			UserID:    userID,
			Coins:     decimal.Zero,
		}
		r.s.wallets[userID] = wallet
	}
	wallet.Coins = wallet.Coins.Add(amount)
	return nil
}

func (r *fakeWalletRepo) DebitIfSufficient(_ context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wallet, ok := r.s.wallets[userID]
	if !ok || wallet.Coins.LessThan(amount) {
		return false, nil
	}
	wallet.Coins = wallet.Coins.Sub(amount)
	return true, nil
}

// --- seller balances ---

type fakeBalanceRepo struct{ s *fakeStore }

func (r *fakeBalanceRepo) GetOrCreate(_ context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[sellerID]
	if !ok {
		balance = &models.SellerBalance{
			BaseModel:        models.BaseModel{ID: uuid.New()},
			SellerID:         sellerID,
			GrossSales:       decimal.Zero,
			AvailableBalance: decimal.Zero,
			TotalFees:        decimal.Zero,
		}
		r.s.balances[sellerID] = balance
	}
	copied := *balance
	return &copied, nil
}

func (r *fakeBalanceRepo) Credit(_ context.Context, sellerID uuid.UUID, gross, fee decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[sellerID]
	if !ok {
		balance = &models.SellerBalance{
			BaseModel:        models.BaseModel{ID: uuid.New()},
			SellerID:         sellerID,
			GrossSales:       decimal.Zero,
			AvailableBalance: decimal.Zero,
			TotalFees:        decimal.Zero,
		}
		r.s.balances[sellerID] = balance
	}
	balance.GrossSales = balance.GrossSales.Add(gross)
	balance.AvailableBalance = balance.AvailableBalance.Add(gross.Sub(fee))
	balance.TotalFees = balance.TotalFees.Add(fee)
	return nil
}

func (r *fakeBalanceRepo) DeductIfSufficient(_ context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[sellerID]
	if !ok || balance.AvailableBalance.LessThan(amount) {
		return false, nil
	}
	balance.AvailableBalance = balance.AvailableBalance.Sub(amount)
	return true, nil
}

func (r *fakeBalanceRepo) AddAvailable(_ context.Context, sellerID uuid.UUID, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, ok := r.s.balances[sellerID]
	if !ok {
		return apperrors.NewNotFound("seller balance")
	}
	balance.AvailableBalance = balance.AvailableBalance.Add(amount)
	return nil
}

// --- payments ---

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now().UTC()
	copied := *payment
	r.s.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment, ok := r.s.payments[id]
	if !ok {
		return nil, apperrors.NewNotFound("payment")
	}
	copied := *payment
	return &copied, nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) MarkReviewedIfPending(_ context.Context, id uuid.UUID, status models.PaymentStatus, reviewerID uuid.UUID, notes string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	p.Status = status
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.Notes = notes
	return true, nil
}

// --- withdrawals ---

type fakeWithdrawalRepo struct{ s *fakeStore }

func (r *fakeWithdrawalRepo) Create(_ context.Context, withdrawal *models.Withdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if withdrawal.ID == uuid.Nil {
		withdrawal.ID = uuid.New()
	}
	withdrawal.CreatedAt = time.Now().UTC()
	copied := *withdrawal
	r.s.withdrawals[withdrawal.ID] = &copied
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	withdrawal, ok := r.s.withdrawals[id]
	if !ok {
		return nil, apperrors.NewNotFound("withdrawal")
	}
	copied := *withdrawal
	return &copied, nil
}

func (r *fakeWithdrawalRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]models.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range r.s.withdrawals {
		if w.SellerID == sellerID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) ListByStatus(_ context.Context, status models.WithdrawalStatus) ([]models.Withdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range r.s.withdrawals {
		if w.Status == status {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) MarkProcessedIfPending(_ context.Context, id uuid.UUID, status models.WithdrawalStatus, adminID uuid.UUID, notes string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.withdrawals[id]
	if !ok || w.Status != models.WithdrawalStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	w.Status = status
	w.ProcessedBy = &adminID
	w.ProcessedAt = &now
	w.Notes = notes
	return true, nil
}

// --- notifier ---

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) NotifySellerNewOrder(*models.User, *models.Purchase, string) {
	n.record("seller_new_order")
}
func (n *recordingNotifier) NotifyBuyerFulfilled(*models.User, *models.Purchase, string) {
	n.record("buyer_fulfilled")
}
func (n *recordingNotifier) NotifyBuyerRefunded(*models.User, *models.Purchase, string) {
	n.record("buyer_refunded")
}
func (n *recordingNotifier) NotifyTopUpReviewed(*models.User, *models.Payment) {
	n.record("topup_reviewed")
}
func (n *recordingNotifier) NotifyWithdrawalProcessed(*models.User, *models.Withdrawal) {
	n.record("withdrawal_processed")
}
func (n *recordingNotifier) NotifyAdminTopUpSubmitted(*models.Payment) {
	n.record("admin_topup_submitted")
}
