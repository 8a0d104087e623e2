package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ParcelStatus represents where a parcel booking is in its lifecycle.
type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "Pending"
	ParcelStatusApproved  ParcelStatus = "Approved"
	ParcelStatusInTransit ParcelStatus = "In-Transit"
	ParcelStatusDelivered ParcelStatus = "Delivered"
	ParcelStatusCancelled ParcelStatus = "Cancelled"
)

// progress orders the main delivery line. Cancelled sits outside it.
var progress = map[ParcelStatus]int{
	ParcelStatusPending:   0,
	ParcelStatusApproved:  1,
	ParcelStatusInTransit: 2,
	ParcelStatusDelivered: 3,
}

// Valid reports whether s is a known status.
func (s ParcelStatus) Valid() bool {
	if s == ParcelStatusCancelled {
		return true
	}
	_, ok := progress[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s ParcelStatus) Terminal() bool {
	return s == ParcelStatusDelivered || s == ParcelStatusCancelled
}

// CanTransitionTo reports whether a parcel in status s may move to next.
// Moves along Pending, Approved, In-Transit, Delivered may skip steps but never go back.
// Cancelled is reachable from Pending or Approved only. Writing the current status is a no-op.
func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == ParcelStatusCancelled {
		return s == ParcelStatusPending || s == ParcelStatusApproved
	}
	return progress[next] > progress[s]
}

// Parcel is a single parcel booking.
type Parcel struct {
	ID                    uuid.UUID       `json:"_id" gorm:"type:char(36);primaryKey"`
	Email                 string          `json:"email" gorm:"size:255;index"`
	PhoneNumber           string          `json:"phoneNumber" gorm:"size:50"`
	ParcelWeight          float64         `json:"parcelWeight"`
	ParcelType            string          `json:"parcelType" gorm:"size:100"`
	ReceiverPhoneNumber   string          `json:"receiverPhoneNumber" gorm:"size:50"`
	ReceiverName          string          `json:"receiverName" gorm:"size:255"`
	ParcelDeliveryAddress string          `json:"parcelDeliveryAddress" gorm:"size:1024"`
	RequestedDeliveryDate string          `json:"requestedDeliveryDate" gorm:"size:64"`
	Price                 decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	Latitude              float64         `json:"latitude"`
	Longitude             float64         `json:"longitude"`
	Status                ParcelStatus    `json:"status" gorm:"type:varchar(20);not null;default:'Pending';index"`
	Date                  string          `json:"date" gorm:"size:64"`
	DeliveryManID         string          `json:"deliveryManId,omitempty" gorm:"column:delivery_man_id;size:36;index"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Parcel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DailyBookingCount is one bucket of the bookings-per-day report.
type DailyBookingCount struct {
	Date  string `json:"_id"`
	Count int64  `json:"count"`
}
