// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username       string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	Role           UserRole   `json:"role" gorm:"type:varchar(20);not null"`
	Status         UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	FeeExempt      bool       `json:"fee_exempt" gorm:"default:false"`
	VouchCount     int64      `json:"vouch_count" gorm:"default:0"`
	HasVouches     bool       `json:"has_vouches" gorm:"default:false"`
	VouchLink      string     `json:"vouch_link,omitempty" gorm:"size:255"`
	TelegramChatID string     `json:"telegram_chat_id,omitempty" gorm:"size:64"`
	ProfileData    JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	Listings  []Listing  `json:"listings,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
