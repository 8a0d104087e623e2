package events

import (
	"context"
	"time"
)

// Routing keys published on the events exchange.
const (
	ParcelBooked        = "parcel.booked"
	ParcelStatusChanged = "parcel.status_changed"
	ParcelDeleted       = "parcel.deleted"
	UserRoleChanged     = "user.role_changed"
)

// Publisher sends lifecycle events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// ParcelEvent describes a change to one parcel.
type ParcelEvent struct {
	ParcelID   string    `json:"parcelId"`
	Email      string    `json:"email,omitempty"`
	FromStatus string    `json:"fromStatus,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// UserEvent describes a change to one user.
type UserEvent struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
