package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies a user. The empty role is an ordinary customer who never picked one.
type Role string

const (
	RoleUnset       Role = ""
	RoleCustomer    Role = "Customer"
	RoleDeliveryMan Role = "Delivery Men"
	RoleAdmin       Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUnset, RoleCustomer, RoleDeliveryMan, RoleAdmin:
		return true
	}
	return false
}

// IsCustomer treats an unset role as a customer.
func (r Role) IsCustomer() bool {
	return r == RoleUnset || r == RoleCustomer
}

// User represents a registered account of the booking platform.
type User struct {
	ID        uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name,omitempty" gorm:"size:255"`
	ImgURL    string    `json:"imgUrl,omitempty" gorm:"column:img_url;size:1024"`
	Phone     string    `json:"phone,omitempty" gorm:"size:50"`
	UserRole  Role      `json:"userRole,omitempty" gorm:"column:user_role;type:varchar(32);index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
