// internal/models/wallet.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's coin balance. Coins never goes negative: every debit
// carries the sufficiency check in the same UPDATE that applies it.
type Wallet struct {
	BaseModel
	UserID uuid.UUID       `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Coins  decimal.Decimal `json:"coins" gorm:"type:decimal(12,2);not null;default:0"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
