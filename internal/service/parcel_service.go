package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"parcelbook/internal/cache"
	"parcelbook/internal/errors"
	"parcelbook/internal/events"
	"parcelbook/internal/model"
	"parcelbook/internal/obs"
	"parcelbook/internal/repository"
)

// AccountDirectory is the slice of the account registry the parcel ledger may consult.
type AccountDirectory interface {
	Exists(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// UpdateResult reports the outcome of a partial update, in the shape the web client expects.
type UpdateResult struct {
	Matched    int64      `json:"matchedCount"`
	Modified   int64      `json:"modifiedCount"`
	UpsertedID *uuid.UUID `json:"upsertedId"`
}

// ParcelService handles the parcel ledger.
type ParcelService interface {
	Book(ctx context.Context, parcel *model.Parcel) (*model.Parcel, error)
	FindByEmail(ctx context.Context, email string) ([]model.Parcel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Parcel, error)
	ListAll(ctx context.Context) ([]model.Parcel, error)
	ListByStatus(ctx context.Context, status model.ParcelStatus) ([]model.Parcel, error)
	ReplaceFields(ctx context.Context, id uuid.UUID, fields model.ParcelFields) (*UpdateResult, error)
	Patch(ctx context.Context, id uuid.UUID, fields model.ParcelFields, upsert bool) (*UpdateResult, error)
	AssignDeliveryMan(ctx context.Context, id, deliveryManID uuid.UUID) (*model.Parcel, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	History(ctx context.Context, id uuid.UUID) ([]model.ParcelStatusEvent, error)
	CountAll(ctx context.Context) (int64, error)
	AggregateByBookingDate(ctx context.Context) ([]model.DailyBookingCount, error)
	Close()
}

// ParcelOptions tunes ledger policy.
type ParcelOptions struct {
	// RequireKnownOwner rejects bookings whose email has no account.
	RequireKnownOwner bool
}

type parcelService struct {
	repo      repository.ParcelRepository
	accounts  AccountDirectory
	cache     *cache.Client
	publisher events.Publisher
	validator *ParcelValidator
	history   *statusRecorder
	opts      ParcelOptions
	tracer    trace.Tracer
	now       func() time.Time

	// per-parcel locks serialise read-check-write on one parcel
	parcelMutexes sync.Map
}

// NewParcelService creates a new parcel service and starts its history worker.
func NewParcelService(
	repo repository.ParcelRepository,
	historyRepo repository.ParcelStatusEventRepository,
	accounts AccountDirectory,
	cache *cache.Client,
	publisher events.Publisher,
	opts ParcelOptions,
) ParcelService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &parcelService{
		repo:      repo,
		accounts:  accounts,
		cache:     cache,
		publisher: publisher,
		validator: NewParcelValidator(),
		history:   newStatusRecorder(historyRepo),
		opts:      opts,
		tracer:    obs.Tracer("parcelbook/service/parcel"),
		now:       time.Now,
	}
}

// Book stores a new parcel. Status defaults to Pending and date to the current time. A booking
// always starts Pending and unassigned.
func (s *parcelService) Book(ctx context.Context, parcel *model.Parcel) (_ *model.Parcel, err error) {
	ctx, span := s.tracer.Start(ctx, "ParcelService.Book")
	defer func() { endSpan(span, err) }()

	parcel.ID = uuid.Nil
	parcel.DeliveryManID = ""
	if parcel.Status != "" && parcel.Status != model.ParcelStatusPending {
		if !parcel.Status.Valid() {
			return nil, errors.ErrInvalidStatus
		}
		return nil, errors.ErrInvalidTransition
	}
	s.applyDefaults(parcel)
	if err := s.validator.ValidateParcel(parcel); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, parcel.Email); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, parcel); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("parcel.id", parcel.ID.String()))
	_ = s.cache.Delete(ctx, statsCacheKey)

	s.recordStatus(ctx, parcel.ID, "", parcel.Status)
	s.publish(ctx, events.ParcelBooked, parcel, "")
	return parcel, nil
}

func (s *parcelService) FindByEmail(ctx context.Context, email string) ([]model.Parcel, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *parcelService) FindByID(ctx context.Context, id uuid.UUID) (*model.Parcel, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *parcelService) ListAll(ctx context.Context) ([]model.Parcel, error) {
	return s.repo.List(ctx)
}

func (s *parcelService) ListByStatus(ctx context.Context, status model.ParcelStatus) ([]model.Parcel, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

// ReplaceFields writes the booking fields of a parcel, creating it under id if absent.
// The owner email and delivery assignment are never touched.
func (s *parcelService) ReplaceFields(ctx context.Context, id uuid.UUID, fields model.ParcelFields) (*UpdateResult, error) {
	return s.Patch(ctx, id, fields.ReplaceableOnly(), true)
}

// Patch applies the set fields to a parcel. Status changes must follow the lifecycle.
// Without upsert an unknown id is ErrParcelNotFound.
func (s *parcelService) Patch(ctx context.Context, id uuid.UUID, fields model.ParcelFields, upsert bool) (_ *UpdateResult, err error) {
	ctx, span := s.tracer.Start(ctx, "ParcelService.Patch", trace.WithAttributes(
		attribute.String("parcel.id", id.String()),
		attribute.Bool("upsert", upsert),
	))
	defer func() { endSpan(span, err) }()

	mutex := s.getMutex(id)
	mutex.Lock()
	defer mutex.Unlock()
	return s.patch(ctx, id, fields, upsert)
}

// patch expects the parcel's mutex to be held.
func (s *parcelService) patch(ctx context.Context, id uuid.UUID, fields model.ParcelFields, upsert bool) (*UpdateResult, error) {
	if err := s.validator.ValidateFields(fields); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if !upsert {
			return nil, errors.ErrParcelNotFound
		}
		return s.insertAt(ctx, id, fields)
	}

	if fields.Status != nil && !existing.Status.CanTransitionTo(*fields.Status) {
		return nil, errors.ErrInvalidTransition
	}
	if fields.Email != nil && *fields.Email != existing.Email {
		if err := s.checkOwner(ctx, *fields.Email); err != nil {
			return nil, err
		}
	}
	if fields.DeliveryManID != nil && *fields.DeliveryManID != existing.DeliveryManID {
		if err := s.checkDeliveryMan(ctx, *fields.DeliveryManID); err != nil {
			return nil, err
		}
	}

	columns := fields.Columns()
	found, err := s.repo.UpdateColumns(ctx, id, columns)
	if err != nil {
		return nil, err
	}
	if !found {
		// deleted between read and write
		return nil, errors.ErrParcelNotFound
	}

	result := &UpdateResult{Matched: 1}
	if len(columns) > 0 {
		result.Modified = 1
	}
	if fields.Status != nil && *fields.Status != existing.Status {
		updated := *existing
		fields.ApplyTo(&updated)
		s.recordStatus(ctx, id, existing.Status, updated.Status)
		s.publish(ctx, events.ParcelStatusChanged, &updated, existing.Status)
	}
	return result, nil
}

// insertAt creates a parcel under id. It is booked Pending and then moved to the requested
// status, which must be reachable from Pending.
func (s *parcelService) insertAt(ctx context.Context, id uuid.UUID, fields model.ParcelFields) (*UpdateResult, error) {
	parcel := &model.Parcel{ID: id}
	fields.ApplyTo(parcel)
	s.applyDefaults(parcel)
	if err := s.validator.ValidateParcel(parcel); err != nil {
		return nil, err
	}
	if !model.ParcelStatusPending.CanTransitionTo(parcel.Status) {
		return nil, errors.ErrInvalidTransition
	}
	if fields.Email != nil {
		if err := s.checkOwner(ctx, parcel.Email); err != nil {
			return nil, err
		}
	}
	if err := s.checkDeliveryMan(ctx, parcel.DeliveryManID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, parcel); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, statsCacheKey)
	s.recordStatus(ctx, id, "", model.ParcelStatusPending)
	if parcel.Status != model.ParcelStatusPending {
		s.recordStatus(ctx, id, model.ParcelStatusPending, parcel.Status)
	}
	s.publish(ctx, events.ParcelBooked, parcel, "")
	return &UpdateResult{UpsertedID: &parcel.ID}, nil
}

// AssignDeliveryMan hands a parcel to a delivery man. A Pending parcel becomes Approved.
func (s *parcelService) AssignDeliveryMan(ctx context.Context, id, deliveryManID uuid.UUID) (_ *model.Parcel, err error) {
	ctx, span := s.tracer.Start(ctx, "ParcelService.AssignDeliveryMan")
	defer func() { endSpan(span, err) }()

	mutex := s.getMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	parcel, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if parcel == nil {
		return nil, errors.ErrParcelNotFound
	}
	if parcel.Status.Terminal() {
		return nil, errors.ErrInvalidTransition
	}

	manID := deliveryManID.String()
	fields := model.ParcelFields{DeliveryManID: &manID}
	if parcel.Status == model.ParcelStatusPending {
		approved := model.ParcelStatusApproved
		fields.Status = &approved
	}
	if _, err := s.patch(ctx, id, fields, false); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a parcel regardless of its status. Deleting an unknown id is not an error.
func (s *parcelService) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	// The mutex entry is kept: a writer already waiting on it must stay serialised with
	// any later writer on the same id.
	mutex := s.getMutex(id)
	mutex.Lock()
	defer mutex.Unlock()

	// queued history must land before its rows are removed
	s.history.flush(ctx)
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_ = s.cache.Delete(ctx, statsCacheKey)
		s.publish(ctx, events.ParcelDeleted, &model.Parcel{ID: id}, "")
	}
	return n, nil
}

// History returns the recorded status changes of a parcel, oldest first.
func (s *parcelService) History(ctx context.Context, id uuid.UUID) ([]model.ParcelStatusEvent, error) {
	s.history.flush(ctx)
	return s.history.repo.ListByParcel(ctx, id)
}

func (s *parcelService) CountAll(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// AggregateByBookingDate counts bookings per calendar day (dd-mm-yyyy, UTC), sorted ascending
// by that key. Dates that cannot be read are counted under "unknown".
func (s *parcelService) AggregateByBookingDate(ctx context.Context) (_ []model.DailyBookingCount, err error) {
	ctx, span := s.tracer.Start(ctx, "ParcelService.AggregateByBookingDate")
	defer func() { endSpan(span, err) }()

	dates, err := s.repo.BookingDates(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, raw := range dates {
		counts[s.validator.BookingDateKey(strings.TrimSpace(raw))]++
	}

	result := make([]model.DailyBookingCount, 0, len(counts))
	for date, n := range counts {
		result = append(result, model.DailyBookingCount{Date: date, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// Close stops the history worker after writing everything queued.
func (s *parcelService) Close() {
	s.history.close()
}

// getMutex returns the mutex for a parcel ID.
func (s *parcelService) getMutex(id uuid.UUID) *sync.Mutex {
	value, _ := s.parcelMutexes.LoadOrStore(id.String(), &sync.Mutex{})
	return value.(*sync.Mutex)
}

func (s *parcelService) applyDefaults(p *model.Parcel) {
	if p.Status == "" {
		p.Status = model.ParcelStatusPending
	}
	if strings.TrimSpace(p.Date) == "" {
		p.Date = s.now().UTC().Format(time.RFC3339)
	}
}

func (s *parcelService) checkOwner(ctx context.Context, email string) error {
	if !s.opts.RequireKnownOwner || s.accounts == nil {
		return nil
	}
	ok, err := s.accounts.Exists(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrUnknownOwner
	}
	return nil
}

// checkDeliveryMan verifies that raw names a user with the delivery role. An empty value
// clears the assignment and needs no lookup.
func (s *parcelService) checkDeliveryMan(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", errors.ErrInvalidID, raw)
	}
	if s.accounts == nil {
		return errors.ErrUserNotFound
	}
	man, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if man == nil {
		return errors.ErrUserNotFound
	}
	if man.UserRole != model.RoleDeliveryMan {
		return errors.ErrNotDeliveryMan
	}
	return nil
}

func (s *parcelService) recordStatus(ctx context.Context, id uuid.UUID, from, to model.ParcelStatus) {
	s.history.record(ctx, model.ParcelStatusEvent{
		ParcelID:   id,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *parcelService) publish(ctx context.Context, key string, p *model.Parcel, from model.ParcelStatus) {
	evt := events.ParcelEvent{
		ParcelID:   p.ID.String(),
		Email:      p.Email,
		FromStatus: string(from),
		Status:     string(p.Status),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, evt); err != nil {
		slog.WarnContext(ctx, "publish event failed", "key", key, "parcel_id", evt.ParcelID, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
