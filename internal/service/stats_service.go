package service

import (
	"context"
	"time"

	"parcelbook/internal/cache"
	"parcelbook/internal/model"
)

const (
	statsCacheKey        = "stats:counts"
	defaultStatsCacheTTL = 30 * time.Second
)

// Statistics is the admin dashboard summary.
type Statistics struct {
	Parcels int64 `json:"parcels"`
	Users   int64 `json:"users"`
}

// StatsService serves administrative reporting.
type StatsService interface {
	Counts(ctx context.Context) (*Statistics, error)
	BookedByDate(ctx context.Context) ([]model.DailyBookingCount, error)
}

type statsService struct {
	parcels ParcelService
	users   UserService
	cache   *cache.Client
	ttl     time.Duration
}

// NewStatsService creates a new stats service. Counts are cached for ttl; a zero ttl uses the default.
func NewStatsService(parcels ParcelService, users UserService, cache *cache.Client, ttl time.Duration) StatsService {
	if ttl <= 0 {
		ttl = defaultStatsCacheTTL
	}
	return &statsService{parcels: parcels, users: users, cache: cache, ttl: ttl}
}

// Counts returns the number of parcels and users, cache first.
func (s *statsService) Counts(ctx context.Context) (*Statistics, error) {
	var cached Statistics
	if s.cache.GetJSON(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	parcels, err := s.parcels.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Parcels: parcels, Users: users}
	_ = s.cache.SetJSON(ctx, statsCacheKey, stats, s.ttl)
	return stats, nil
}

// BookedByDate is always computed from the store.
func (s *statsService) BookedByDate(ctx context.Context) ([]model.DailyBookingCount, error) {
	return s.parcels.AggregateByBookingDate(ctx)
}
