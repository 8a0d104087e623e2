package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcelbook/internal/db"
	"parcelbook/internal/errors"
	"parcelbook/internal/model"
	"parcelbook/internal/repository"
)

type ledger struct {
	users   UserService
	parcels ParcelService
}

func newLedger(t *testing.T, opts ParcelOptions) *ledger {
	t.Helper()
	gormDB, err := db.Open("sqlite", "file::memory:", db.Options{MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))

	users := NewUserService(repository.NewUserRepository(gormDB), nil, nil)
	parcels := NewParcelService(
		repository.NewParcelRepository(gormDB),
		repository.NewParcelStatusEventRepository(gormDB),
		users,
		nil,
		nil,
		opts,
	)
	t.Cleanup(func() {
		parcels.Close()
		_ = db.Close(gormDB)
	})
	return &ledger{users: users, parcels: parcels}
}

func TestLedger_BookThenDeliver(t *testing.T) {
	l := newLedger(t, ParcelOptions{})
	ctx := context.Background()

	booked, err := l.parcels.Book(ctx, &model.Parcel{
		Email:                 "a@x.com",
		PhoneNumber:           "01700000000",
		ParcelWeight:          2.5,
		ParcelType:            "Document",
		ReceiverName:          "Rahim",
		ParcelDeliveryAddress: "Dhaka",
		Price:                 decimal.RequireFromString("150.50"),
		Latitude:              23.81,
		Longitude:             90.41,
	})
	require.NoError(t, err)
	require.Equal(t, model.ParcelStatusPending, booked.Status)

	delivered := model.ParcelStatusDelivered
	result, err := l.parcels.Patch(ctx, booked.ID, model.ParcelFields{Status: &delivered}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Matched)

	got, err := l.parcels.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ParcelStatusDelivered, got.Status)
	assert.Equal(t, "Rahim", got.ReceiverName)
	assert.Equal(t, "Dhaka", got.ParcelDeliveryAddress)
	assert.Equal(t, 2.5, got.ParcelWeight)
	assert.True(t, decimal.RequireFromString("150.50").Equal(got.Price))

	pending := model.ParcelStatusPending
	_, err = l.parcels.Patch(ctx, booked.ID, model.ParcelFields{Status: &pending}, false)
	assert.Equal(t, errors.ErrInvalidTransition, err)

	history, err := l.parcels.History(ctx, booked.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ParcelStatusPending, history[1].FromStatus)
	assert.Equal(t, model.ParcelStatusDelivered, history[1].ToStatus)
}

func TestLedger_RegisterTwiceKeepsOneRecord(t *testing.T) {
	l := newLedger(t, ParcelOptions{})
	ctx := context.Background()

	first, created, err := l.users.Register(ctx, &model.User{Email: "a@x.com", Name: "Asha"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := l.users.Register(ctx, &model.User{Email: "a@x.com", Name: "Impostor"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha", second.Name)

	n, err := l.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLedger_ListByRole(t *testing.T) {
	l := newLedger(t, ParcelOptions{})
	ctx := context.Background()

	for i, role := range []model.Role{model.RoleDeliveryMan, model.RoleCustomer, model.RoleDeliveryMan} {
		_, _, err := l.users.Register(ctx, &model.User{Email: string(rune('a'+i)) + "@x.com", UserRole: role})
		require.NoError(t, err)
	}

	men, err := l.users.ListByRole(ctx, model.RoleDeliveryMan)
	require.NoError(t, err)
	assert.Len(t, men, 2)
}

func TestLedger_OwnerMustExistWhenRequired(t *testing.T) {
	l := newLedger(t, ParcelOptions{RequireKnownOwner: true})
	ctx := context.Background()

	_, err := l.parcels.Book(ctx, &model.Parcel{Email: "ghost@x.com"})
	assert.Equal(t, errors.ErrUnknownOwner, err)

	_, _, err = l.users.Register(ctx, &model.User{Email: "real@x.com"})
	require.NoError(t, err)
	_, err = l.parcels.Book(ctx, &model.Parcel{Email: "real@x.com"})
	assert.NoError(t, err)
}

func TestLedger_ManageParcelUpsert(t *testing.T) {
	l := newLedger(t, ParcelOptions{})
	ctx := context.Background()
	id := uuid.New()

	approved := model.ParcelStatusApproved
	result, err := l.parcels.Patch(ctx, id, model.ParcelFields{Status: &approved}, true)
	require.NoError(t, err)
	require.NotNil(t, result.UpsertedID)
	assert.Equal(t, id, *result.UpsertedID)

	got, err := l.parcels.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ParcelStatusApproved, got.Status)

	n, err := l.parcels.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = l.parcels.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestLedger_AggregationSumsToParcelCount(t *testing.T) {
	l := newLedger(t, ParcelOptions{})
	ctx := context.Background()

	for _, date := range []string{"2024-06-02T10:00:00Z", "2024-06-01T09:00:00Z", "2024-06-02T23:59:59Z", "2024-05-31T12:00:00Z"} {
		_, err := l.parcels.Book(ctx, &model.Parcel{Email: "a@x.com", Date: date})
		require.NoError(t, err)
	}

	counts, err := l.parcels.AggregateByBookingDate(ctx)
	require.NoError(t, err)

	total, err := l.parcels.CountAll(ctx)
	require.NoError(t, err)

	var sum int64
	for i, c := range counts {
		sum += c.Count
		if i > 0 {
			assert.Less(t, counts[i-1].Date, c.Date)
		}
	}
	assert.Equal(t, total, sum)
	assert.Equal(t, "01-06-2024", counts[0].Date)
}
