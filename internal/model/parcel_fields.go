package model

import "github.com/shopspring/decimal"

// ParcelFields is a partial parcel document. A nil field is absent and leaves the stored value
// untouched.
type ParcelFields struct {
	Email                 *string          `json:"email,omitempty"`
	PhoneNumber           *string          `json:"phoneNumber,omitempty"`
	ParcelWeight          *float64         `json:"parcelWeight,omitempty"`
	ParcelType            *string          `json:"parcelType,omitempty"`
	ReceiverPhoneNumber   *string          `json:"receiverPhoneNumber,omitempty"`
	ReceiverName          *string          `json:"receiverName,omitempty"`
	ParcelDeliveryAddress *string          `json:"parcelDeliveryAddress,omitempty"`
	RequestedDeliveryDate *string          `json:"requestedDeliveryDate,omitempty"`
	Price                 *decimal.Decimal `json:"price,omitempty"`
	Latitude              *float64         `json:"latitude,omitempty"`
	Longitude             *float64         `json:"longitude,omitempty"`
	Status                *ParcelStatus    `json:"status,omitempty"`
	Date                  *string          `json:"date,omitempty"`
	DeliveryManID         *string          `json:"deliveryManId,omitempty"`
}

// ReplaceableOnly drops the fields a full-field replace does not touch: the owner email and the
// delivery assignment.
func (f ParcelFields) ReplaceableOnly() ParcelFields {
	f.Email = nil
	f.DeliveryManID = nil
	return f
}

// Empty reports whether no field is set.
func (f ParcelFields) Empty() bool {
	return len(f.Columns()) == 0
}

// Columns maps the set fields to their column names.
func (f ParcelFields) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if f.Email != nil {
		cols["email"] = *f.Email
	}
	if f.PhoneNumber != nil {
		cols["phone_number"] = *f.PhoneNumber
	}
	if f.ParcelWeight != nil {
		cols["parcel_weight"] = *f.ParcelWeight
	}
	if f.ParcelType != nil {
		cols["parcel_type"] = *f.ParcelType
	}
	if f.ReceiverPhoneNumber != nil {
		cols["receiver_phone_number"] = *f.ReceiverPhoneNumber
	}
	if f.ReceiverName != nil {
		cols["receiver_name"] = *f.ReceiverName
	}
	if f.ParcelDeliveryAddress != nil {
		cols["parcel_delivery_address"] = *f.ParcelDeliveryAddress
	}
	if f.RequestedDeliveryDate != nil {
		cols["requested_delivery_date"] = *f.RequestedDeliveryDate
	}
	if f.Price != nil {
		cols["price"] = *f.Price
	}
	if f.Latitude != nil {
		cols["latitude"] = *f.Latitude
	}
	if f.Longitude != nil {
		cols["longitude"] = *f.Longitude
	}
	if f.Status != nil {
		cols["status"] = *f.Status
	}
	if f.Date != nil {
		cols["date"] = *f.Date
	}
	if f.DeliveryManID != nil {
		cols["delivery_man_id"] = *f.DeliveryManID
	}
	return cols
}

// ApplyTo copies the set fields onto p.
func (f ParcelFields) ApplyTo(p *Parcel) {
	if f.Email != nil {
		p.Email = *f.Email
	}
	if f.PhoneNumber != nil {
		p.PhoneNumber = *f.PhoneNumber
	}
	if f.ParcelWeight != nil {
		p.ParcelWeight = *f.ParcelWeight
	}
	if f.ParcelType != nil {
		p.ParcelType = *f.ParcelType
	}
	if f.ReceiverPhoneNumber != nil {
		p.ReceiverPhoneNumber = *f.ReceiverPhoneNumber
	}
	if f.ReceiverName != nil {
		p.ReceiverName = *f.ReceiverName
	}
	if f.ParcelDeliveryAddress != nil {
		p.ParcelDeliveryAddress = *f.ParcelDeliveryAddress
	}
	if f.RequestedDeliveryDate != nil {
		p.RequestedDeliveryDate = *f.RequestedDeliveryDate
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Latitude != nil {
		p.Latitude = *f.Latitude
	}
	if f.Longitude != nil {
		p.Longitude = *f.Longitude
	}
	if f.Status != nil {
		p.Status = *f.Status
	}
	if f.Date != nil {
		p.Date = *f.Date
	}
	if f.DeliveryManID != nil {
		p.DeliveryManID = *f.DeliveryManID
	}
}
