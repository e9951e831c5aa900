// internal/services/withdrawal_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/models"
	"github.com/gamevault/gamevault-backend/internal/repository"
)

// WithdrawalService pays sellers out of their available balance. The balance is
// deducted up front when the request is created; rejecting the request restores
// it. GCash payouts themselves happen off-platform.
type WithdrawalService struct {
	store    repository.Store
	notifier Notifier
	cfg      config.MarketplaceConfig
}

func NewWithdrawalService(store repository.Store, notifier Notifier, cfg config.MarketplaceConfig) *WithdrawalService {
	return &WithdrawalService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Request deducts the amount from the seller's available balance and records
// the pending withdrawal in one transaction. The sufficiency check is part of
// the deduct UPDATE, so two concurrent requests cannot overdraw the ledger.
func (s *WithdrawalService) Request(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal, gcashNumber string) (*models.Withdrawal, error) {
	minimum := decimal.NewFromFloat(s.cfg.MinimumWithdrawal)
	if amount.LessThan(minimum) {
		return nil, fmt.Errorf("minimum withdrawal is %s", minimum.StringFixed(2))
	}

	withdrawal := &models.Withdrawal{
		SellerID:    sellerID,
		Amount:      amount,
		GcashNumber: gcashNumber,
		Status:      models.WithdrawalStatusPending,
	}

	err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		deducted, err := tx.SellerBalances().DeductIfSufficient(ctx, sellerID, amount)
		if err != nil {
			return fmt.Errorf("deduct seller balance: %w", err)
		}
		if !deducted {
			balance, berr := tx.SellerBalances().GetOrCreate(ctx, sellerID)
			available := decimal.Zero
			if berr == nil {
				available = balance.AvailableBalance
			}
			return &apperrors.InsufficientBalanceError{
				Requested: amount,
				Available: available,
			}
		}

		return tx.Withdrawals().Create(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"withdrawal_id": withdrawal.ID,
		"seller_id":     sellerID,
		"amount":        amount,
	}).Info("Withdrawal requested, balance held")

	return withdrawal, nil
}

// MarkPaid records that the admin sent the GCash transfer. The balance was
// already deducted at request time, so this only flips the status.
func (s *WithdrawalService) MarkPaid(ctx context.Context, adminID, withdrawalID uuid.UUID, notes string) (*models.Withdrawal, error) {
	withdrawal, err := s.store.Withdrawals().GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	won, err := s.store.Withdrawals().MarkProcessedIfPending(ctx, withdrawalID, models.WithdrawalStatusPaid, adminID, notes)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.NewInvalidState("withdrawal is %s, cannot mark paid", withdrawal.Status)
	}

	logrus.WithFields(logrus.Fields{
		"withdrawal_id": withdrawalID,
		"admin_id":      adminID,
	}).Info("Withdrawal paid")

	updated, err := s.store.Withdrawals().GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	go s.notifyProcessed(updated)

	return updated, nil
}

// Reject puts the held amount back into the seller's available balance in the
// same transaction that flips the status, so the restore happens exactly once.
func (s *WithdrawalService) Reject(ctx context.Context, adminID, withdrawalID uuid.UUID, notes string) (*models.Withdrawal, error) {
	withdrawal, err := s.store.Withdrawals().GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	err = s.store.InTransaction(ctx, func(tx repository.Store) error {
		won, err := tx.Withdrawals().MarkProcessedIfPending(ctx, withdrawalID, models.WithdrawalStatusRejected, adminID, notes)
		if err != nil {
			return err
		}
		if !won {
			return apperrors.NewInvalidState("withdrawal is %s, cannot reject", withdrawal.Status)
		}

		return tx.SellerBalances().AddAvailable(ctx, withdrawal.SellerID, withdrawal.Amount)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"withdrawal_id": withdrawalID,
		"admin_id":      adminID,
		"amount":        withdrawal.Amount,
	}).Info("Withdrawal rejected, balance restored")

	updated, err := s.store.Withdrawals().GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	go s.notifyProcessed(updated)

	return updated, nil
}

func (s *WithdrawalService) GetBalance(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	return s.store.SellerBalances().GetOrCreate(ctx, sellerID)
}

func (s *WithdrawalService) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]models.Withdrawal, error) {
	return s.store.Withdrawals().ListBySeller(ctx, sellerID)
}

func (s *WithdrawalService) ListPending(ctx context.Context) ([]models.Withdrawal, error) {
	return s.store.Withdrawals().ListByStatus(ctx, models.WithdrawalStatusPending)
}

func (s *WithdrawalService) notifyProcessed(withdrawal *models.Withdrawal) {
	seller, err := s.store.Users().GetByID(context.Background(), withdrawal.SellerID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load seller for notification")
		return
	}
	s.notifier.NotifyWithdrawalProcessed(seller, withdrawal)
}
