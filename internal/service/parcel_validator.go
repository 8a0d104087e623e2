package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"parcelbook/internal/errors"
	"parcelbook/internal/model"
)

// bookingDateLayouts are tried in order when reading the stored booking date.
var bookingDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	time.RFC1123Z,
	time.RFC1123,
}

// unknownDateKey buckets bookings whose date cannot be read.
const unknownDateKey = "unknown"

// ParcelValidator validates parcel fields at the boundary before they reach the store.
type ParcelValidator struct{}

// NewParcelValidator creates a new parcel validator.
func NewParcelValidator() *ParcelValidator {
	return &ParcelValidator{}
}

// ValidateParcel checks a complete parcel record.
func (v *ParcelValidator) ValidateParcel(p *model.Parcel) error {
	if !p.Status.Valid() {
		return errors.ErrInvalidStatus
	}
	if err := v.validateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return errors.ErrInvalidPrice
	}
	if p.ParcelWeight < 0 {
		return errors.ErrInvalidWeight
	}
	return nil
}

// ValidateFields checks only the fields present in a partial update.
func (v *ParcelValidator) ValidateFields(f model.ParcelFields) error {
	if f.Status != nil && !f.Status.Valid() {
		return errors.ErrInvalidStatus
	}
	lat, lng := 0.0, 0.0
	if f.Latitude != nil {
		lat = *f.Latitude
	}
	if f.Longitude != nil {
		lng = *f.Longitude
	}
	if err := v.validateCoordinates(lat, lng); err != nil {
		return err
	}
	if f.Price != nil && f.Price.LessThan(decimal.Zero) {
		return errors.ErrInvalidPrice
	}
	if f.ParcelWeight != nil && *f.ParcelWeight < 0 {
		return errors.ErrInvalidWeight
	}
	return nil
}

// validateCoordinates checks latitude and longitude ranges.
func (v *ParcelValidator) validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errors.ErrInvalidCoordinates
	}
	return nil
}

// ParseBookingDate reads a stored booking date in any of the accepted layouts.
func (v *ParcelValidator) ParseBookingDate(raw string) (time.Time, bool) {
	// Date.toString() appends the zone name, e.g. " (Bangladesh Standard Time)"
	if i := strings.Index(raw, " ("); i > 0 && strings.HasSuffix(raw, ")") {
		raw = raw[:i]
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BookingDateKey formats a stored booking date as day-month-year in UTC, or "unknown".
func (v *ParcelValidator) BookingDateKey(raw string) string {
	t, ok := v.ParseBookingDate(raw)
	if !ok {
		return unknownDateKey
	}
	return t.UTC().Format("02-01-2006")
}
