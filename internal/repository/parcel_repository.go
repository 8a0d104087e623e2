package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parcelbook/internal/model"
)

// ParcelRepository defines parcel persistence operations.
// Lookups return nil without an error when no record matches.
type ParcelRepository interface {
	Create(ctx context.Context, parcel *model.Parcel) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Parcel, error)
	FindByEmail(ctx context.Context, email string) ([]model.Parcel, error)
	List(ctx context.Context) ([]model.Parcel, error)
	ListByStatus(ctx context.Context, status model.ParcelStatus) ([]model.Parcel, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	BookingDates(ctx context.Context) ([]string, error)
}

type parcelRepository struct {
	db *gorm.DB
}

// NewParcelRepository creates a new parcel repository.
func NewParcelRepository(db *gorm.DB) ParcelRepository {
	return &parcelRepository{db: db}
}

// Create inserts a parcel. A preset ID is kept, otherwise one is assigned.
func (r *parcelRepository) Create(ctx context.Context, parcel *model.Parcel) error {
	if err := r.db.WithContext(ctx).Create(parcel).Error; err != nil {
		return fmt.Errorf("create parcel: %w", err)
	}
	return nil
}

func (r *parcelRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Parcel, error) {
	var parcel model.Parcel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&parcel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find parcel %s: %w", id, err)
	}
	return &parcel, nil
}

func (r *parcelRepository) FindByEmail(ctx context.Context, email string) ([]model.Parcel, error) {
	parcels := []model.Parcel{}
	if err := r.db.WithContext(ctx).Where("email = ?", email).Find(&parcels).Error; err != nil {
		return nil, fmt.Errorf("find parcels by email: %w", err)
	}
	return parcels, nil
}

func (r *parcelRepository) List(ctx context.Context) ([]model.Parcel, error) {
	parcels := []model.Parcel{}
	if err := r.db.WithContext(ctx).Find(&parcels).Error; err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	return parcels, nil
}

func (r *parcelRepository) ListByStatus(ctx context.Context, status model.ParcelStatus) ([]model.Parcel, error) {
	parcels := []model.Parcel{}
	if err := r.db.WithContext(ctx).Where("status = ?", status).Find(&parcels).Error; err != nil {
		return nil, fmt.Errorf("list parcels by status: %w", err)
	}
	return parcels, nil
}

// UpdateColumns writes the given columns on one parcel and reports whether it exists.
func (r *parcelRepository) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]interface{}) (bool, error) {
	if len(columns) == 0 {
		return r.exists(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(&model.Parcel{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return false, fmt.Errorf("update parcel %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	return r.exists(ctx, id)
}

// Delete removes a parcel together with its status history.
func (r *parcelRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parcel_id = ?", id).Delete(&model.ParcelStatusEvent{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Parcel{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete parcel %s: %w", id, err)
	}
	return deleted, nil
}

func (r *parcelRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Parcel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count parcels: %w", err)
	}
	return n, nil
}

// BookingDates returns the raw booking date of every parcel in a single read.
func (r *parcelRepository) BookingDates(ctx context.Context) ([]string, error) {
	dates := []string{}
	if err := r.db.WithContext(ctx).Model(&model.Parcel{}).Pluck("date", &dates).Error; err != nil {
		return nil, fmt.Errorf("pluck booking dates: %w", err)
	}
	return dates, nil
}

func (r *parcelRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Parcel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check parcel %s: %w", id, err)
	}
	return n > 0, nil
}

// ParcelStatusEventRepository defines status history persistence operations.
type ParcelStatusEventRepository interface {
	Create(ctx context.Context, event *model.ParcelStatusEvent) error
	CreateBatch(ctx context.Context, events []model.ParcelStatusEvent) error
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]model.ParcelStatusEvent, error)
}

type parcelStatusEventRepository struct {
	db *gorm.DB
}

// NewParcelStatusEventRepository creates a new status history repository.
func NewParcelStatusEventRepository(db *gorm.DB) ParcelStatusEventRepository {
	return &parcelStatusEventRepository{db: db}
}

// Create creates a single history entry.
func (r *parcelStatusEventRepository) Create(ctx context.Context, event *model.ParcelStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CreateBatch creates multiple history entries in a single statement batch.
func (r *parcelStatusEventRepository) CreateBatch(ctx context.Context, events []model.ParcelStatusEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}

// ListByParcel returns the history of one parcel, oldest first.
func (r *parcelStatusEventRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]model.ParcelStatusEvent, error) {
	events := []model.ParcelStatusEvent{}
	if err := r.db.WithContext(ctx).Where("parcel_id = ?", parcelID).Order("created_at asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	return events, nil
}
