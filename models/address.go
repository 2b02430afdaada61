package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxAddressesPerUser caps the number of non-deleted addresses a user may hold.
const MaxAddressesPerUser = 10

type AddressType string

const (
	AddressTypeHome  AddressType = "Home"
	AddressTypeWork  AddressType = "Work"
	AddressTypeOther AddressType = "Other"
)

// Address belongs to exactly one user. Deletion is a flag flip only; among a
// user's non-deleted addresses at most one carries IsDefault.
type Address struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	FullName     string      `gorm:"not null" json:"full_name"`
	Phone        string      `gorm:"not null" json:"phone"`
	AltPhone     string      `json:"alt_phone,omitempty"`
	Pincode      string      `gorm:"not null" json:"pincode"`
	AddressLine1 string      `gorm:"not null" json:"address_line1"`
	AddressLine2 string      `gorm:"not null" json:"address_line2"`
	Landmark     string      `json:"landmark,omitempty"`
	City         string      `gorm:"not null" json:"city"`
	State        string      `gorm:"not null" json:"state"`
	AddressType  AddressType `gorm:"type:VARCHAR(10);default:'Home'" json:"address_type"`

	IsDefault bool `json:"is_default"`
	IsDeleted bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
