// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase tracks one buyer's transaction against one listing. Amount is fixed
// at the listing price when the row is created and never changes afterwards.
// AccountDetails is written exactly once, on the awaiting_seller -> completed
// transition.
type Purchase struct {
	BaseModel
	ListingID      uuid.UUID       `json:"listing_id" gorm:"type:uuid;not null;index"`
	BuyerID        uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID       uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status         PurchaseStatus  `json:"status" gorm:"type:varchar(20);default:'awaiting_seller';index"`
	AccountDetails string          `json:"account_details,omitempty" gorm:"type:text"`
	IsConfirmed    bool            `json:"is_confirmed" gorm:"default:false"`
	ConfirmedAt    *time.Time      `json:"confirmed_at"`
	CancelledAt    *time.Time      `json:"cancelled_at"`

	// Relationships
	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
