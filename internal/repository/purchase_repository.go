// internal/repository/purchase_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/models"
)

type purchaseRepository struct {
	db *gorm.DB
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Listing").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("purchase")
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.PurchaseStatusAwaitingSeller, cutoff).
		Find(&purchases).Error
	return purchases, err
}

// The claim methods put the source-state check in the UPDATE's WHERE clause so
// two racing callers cannot both win. RowsAffected tells the winner apart.

func (r *purchaseRepository) MarkCompletedIfAwaiting(ctx context.Context, id uuid.UUID, accountDetails string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, models.PurchaseStatusAwaitingSeller).
		Updates(map[string]interface{}{
			"status":          models.PurchaseStatusCompleted,
			"account_details": accountDetails,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *purchaseRepository) MarkCancelledIfAwaiting(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, models.PurchaseStatusAwaitingSeller).
		Updates(map[string]interface{}{
			"status":       models.PurchaseStatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *purchaseRepository) MarkConfirmedIfCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status = ? AND is_confirmed = ?", id, models.PurchaseStatusCompleted, false).
		Updates(map[string]interface{}{
			"is_confirmed": true,
			"confirmed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
