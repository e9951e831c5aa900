// internal/models/listing.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Listing struct {
	BaseModel
	SellerID    uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Category    string          `json:"category" gorm:"size:100;index"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	InStock     bool            `json:"in_stock" gorm:"default:true;index"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[]"`
	Tags        pq.StringArray  `json:"tags" gorm:"type:text[]"`
	SalesCount  int64           `json:"sales_count" gorm:"default:0"`

	// Relationships
	Seller    User       `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:ListingID"`
}
