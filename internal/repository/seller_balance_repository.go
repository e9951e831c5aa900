// internal/repository/seller_balance_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/models"
)

type sellerBalanceRepository struct {
	db *gorm.DB
}

func (r *sellerBalanceRepository) GetOrCreate(ctx context.Context, sellerID uuid.UUID) (*models.SellerBalance, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoNothing: true,
		}).
		Create(&models.SellerBalance{
			SellerID:         sellerID,
			GrossSales:       decimal.Zero,
			AvailableBalance: decimal.Zero,
			TotalFees:        decimal.Zero,
		}).Error
	if err != nil {
		return nil, err
	}

	var balance models.SellerBalance
	if err := r.db.WithContext(ctx).First(&balance, "seller_id = ?", sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("seller balance")
		}
		return nil, err
	}
	return &balance, nil
}

func (r *sellerBalanceRepository) Credit(ctx context.Context, sellerID uuid.UUID, gross, fee decimal.Decimal) error {
	net := gross.Sub(fee)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "seller_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"gross_sales":       gorm.Expr("seller_balances.gross_sales + ?", gross),
				"available_balance": gorm.Expr("seller_balances.available_balance + ?", net),
				"total_fees":        gorm.Expr("seller_balances.total_fees + ?", fee),
			}),
		}).
		Create(&models.SellerBalance{
			SellerID:         sellerID,
			GrossSales:       gross,
			AvailableBalance: net,
			TotalFees:        fee,
		}).Error
}

func (r *sellerBalanceRepository) DeductIfSufficient(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.SellerBalance{}).
		Where("seller_id = ? AND available_balance >= ?", sellerID, amount).
		Update("available_balance", gorm.Expr("available_balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *sellerBalanceRepository) AddAvailable(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.SellerBalance{}).
		Where("seller_id = ?", sellerID).
		Update("available_balance", gorm.Expr("available_balance + ?", amount)).Error
}
