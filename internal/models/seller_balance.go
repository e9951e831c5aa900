// internal/models/seller_balance.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerBalance is a seller's earnings ledger. GrossSales and TotalFees only
// grow; AvailableBalance grows on confirmed sales and shrinks on withdrawals.
type SellerBalance struct {
	BaseModel
	SellerID         uuid.UUID       `json:"seller_id" gorm:"type:uuid;uniqueIndex;not null"`
	GrossSales       decimal.Decimal `json:"gross_sales" gorm:"type:decimal(12,2);not null;default:0"`
	AvailableBalance decimal.Decimal `json:"available_balance" gorm:"type:decimal(12,2);not null;default:0"`
	TotalFees        decimal.Decimal `json:"total_fees" gorm:"type:decimal(12,2);not null;default:0"`
	LastUpdated      time.Time       `json:"last_updated" gorm:"autoUpdateTime"`

	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
