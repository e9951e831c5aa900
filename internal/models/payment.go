// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a wallet top-up request. GCash transfers are made outside the
// platform; an admin reviews the reference number / receipt and approves or
// rejects. Approval credits the wallet in the same transaction that flips the
// status.
type Payment struct {
	BaseModel
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method      string          `json:"method" gorm:"size:20;default:'gcash'"`
	ReferenceNo string          `json:"reference_no" gorm:"size:64"`
	ReceiptURL  string          `json:"receipt_url,omitempty" gorm:"size:512"`
	Status      PaymentStatus   `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ReviewedBy  *uuid.UUID      `json:"reviewed_by" gorm:"type:uuid"`
	ReviewedAt  *time.Time      `json:"reviewed_at"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Withdrawal is a seller's payout request against their available balance. The
// balance is deducted when the request is created; rejecting the request puts
// the amount back.
type Withdrawal struct {
	BaseModel
	SellerID    uuid.UUID        `json:"seller_id" gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal  `json:"amount" gorm:"type:decimal(12,2);not null"`
	GcashNumber string           `json:"gcash_number" gorm:"size:20"`
	Status      WithdrawalStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedBy *uuid.UUID       `json:"processed_by" gorm:"type:uuid"`
	ProcessedAt *time.Time       `json:"processed_at"`
	Notes       string           `json:"notes,omitempty" gorm:"type:text"`

	Seller User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
