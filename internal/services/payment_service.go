// internal/services/payment_service.go
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

// PaymentService handles wallet top-ups. Money moves outside the platform
// (GCash transfer to the operator); the user submits the reference number and
// receipt, an admin reviews it, and approval credits the wallet in the same
// transaction that flips the payment status.
type PaymentService struct {
	store    repository.Store
	notifier Notifier
	cfg      config.MarketplaceConfig
}

func NewPaymentService(store repository.Store, notifier Notifier, cfg config.MarketplaceConfig) *PaymentService {
	return &PaymentService{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *PaymentService) SubmitTopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, referenceNo, receiptURL string) (*models.Payment, error) {
	minimum := decimal.NewFromFloat(s.cfg.MinimumTopUp)
	if amount.LessThan(minimum) {
		return nil, fmt.Errorf("minimum top-up is %s", minimum.StringFixed(2))
	}

	payment := &models.Payment{
		UserID:      userID,
		Amount:      amount,
		Method:      "gcash",
		ReferenceNo: referenceNo,
		ReceiptURL:  receiptURL,
		Status:      models.PaymentStatusPending,
	}

	if err := s.store.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"user_id":    userID,
		"amount":     amount,
	}).Info("Top-up submitted for review")

	go s.notifier.NotifyAdminTopUpSubmitted(payment)

	return payment, nil
}

// Approve credits the wallet and marks the payment approved atomically. The
// pending check rides in the claim UPDATE, so a payment can be approved at most
// once even with two admins clicking at the same time.
func (s *PaymentService) Approve(ctx context.Context, adminID, paymentID uuid.UUID, notes string) (*models.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	err = s.store.InTransaction(ctx, func(tx repository.Store) error {
		won, err := tx.Payments().MarkReviewedIfPending(ctx, paymentID, models.PaymentStatusApproved, adminID, notes)
		if err != nil {
			return err
		}
		if !won {
			return apperrors.NewInvalidState("payment is %s, cannot approve", payment.Status)
		}

		return tx.Wallets().Credit(ctx, payment.UserID, payment.Amount)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"admin_id":   adminID,
		"amount":     payment.Amount,
	}).Info("Top-up approved, wallet credited")

	updated, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	go s.notifyReviewed(updated)

	return updated, nil
}

func (s *PaymentService) Reject(ctx context.Context, adminID, paymentID uuid.UUID, notes string) (*models.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	won, err := s.store.Payments().MarkReviewedIfPending(ctx, paymentID, models.PaymentStatusRejected, adminID, notes)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.NewInvalidState("payment is %s, cannot reject", payment.Status)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"admin_id":   adminID,
	}).Info("Top-up rejected")

	updated, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	go s.notifyReviewed(updated)

	return updated, nil
}

func (s *PaymentService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return s.store.Wallets().GetOrCreate(ctx, userID)
}

func (s *PaymentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return s.store.Payments().ListByUser(ctx, userID)
}

func (s *PaymentService) ListPending(ctx context.Context) ([]models.Payment, error) {
	return s.store.Payments().ListByStatus(ctx, models.PaymentStatusPending)
}

func (s *PaymentService) notifyReviewed(payment *models.Payment) {
	user, err := s.store.Users().GetByID(context.Background(), payment.UserID)
	if err != nil {
		logrus.WithError(err).Warn("Could not load user for notification")
		return
	}
	s.notifier.NotifyTopUpReviewed(user, payment)
}
