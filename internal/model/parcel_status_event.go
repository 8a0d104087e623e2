package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParcelStatusEvent records one accepted status change of a parcel.
type ParcelStatusEvent struct {
	ID         uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	ParcelID   uuid.UUID    `json:"parcelId" gorm:"type:char(36);not null;index"`
	FromStatus ParcelStatus `json:"fromStatus" gorm:"type:varchar(20)"`
	ToStatus   ParcelStatus `json:"toStatus" gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time    `json:"createdAt" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (e *ParcelStatusEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
