package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parcelbook/internal/cache"
	"parcelbook/internal/model"
)

func TestStatsService_CountsAreCached(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := cache.New(mr.Addr(), "", 0)
	defer redis.Close()

	parcelRepo := new(MockParcelRepository)
	parcelRepo.On("Count", mock.Anything).Return(int64(7), nil).Once()
	parcelRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Parcel")).Return(nil)
	userRepo := new(MockUserRepository)
	userRepo.On("Count", mock.Anything).Return(int64(3), nil).Once()

	users := NewUserService(userRepo, redis, nil)
	parcels := NewParcelService(parcelRepo, &memoryHistory{}, users, redis, nil, ParcelOptions{})
	defer parcels.Close()
	stats := NewStatsService(parcels, users, redis, time.Minute)

	ctx := context.Background()
	first, err := stats.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Statistics{Parcels: 7, Users: 3}, first)
	assert.True(t, mr.Exists(statsCacheKey))

	// served from redis, the repositories are not asked again
	second, err := stats.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// booking invalidates the cached counts
	_, err = parcels.Book(ctx, &model.Parcel{Email: "a@x.com"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(statsCacheKey))

	parcelRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestStatsService_WorksWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	redis := cache.New(mr.Addr(), "", 0)
	defer redis.Close()
	mr.Close()

	parcelRepo := new(MockParcelRepository)
	parcelRepo.On("Count", mock.Anything).Return(int64(1), nil).Twice()
	userRepo := new(MockUserRepository)
	userRepo.On("Count", mock.Anything).Return(int64(2), nil).Twice()

	users := NewUserService(userRepo, redis, nil)
	parcels := NewParcelService(parcelRepo, &memoryHistory{}, users, redis, nil, ParcelOptions{})
	defer parcels.Close()
	stats := NewStatsService(parcels, users, redis, 0)

	for i := 0; i < 2; i++ {
		got, err := stats.Counts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &Statistics{Parcels: 1, Users: 2}, got)
	}
	parcelRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
