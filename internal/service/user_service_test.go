package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parcelbook/internal/errors"
	"parcelbook/internal/events"
	"parcelbook/internal/model"
)

func TestUserService_Register(t *testing.T) {
	existingID := uuid.New()
	tests := []struct {
		name          string
		user          model.User
		setupMock     func(*MockUserRepository)
		expectCreated bool
		expectedError error
	}{
		{
			name: "successful registration",
			user: model.User{Email: "a@x.com", Name: "Asha"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectCreated: true,
		},
		{
			name: "email already registered",
			user: model.User{Email: "a@x.com", Name: "Other"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: existingID, Email: "a@x.com", Name: "Asha"}, nil)
			},
			expectCreated: false,
		},
		{
			name: "concurrent registration lost the unique index",
			user: model.User{Email: "a@x.com"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, nil).Once()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(fmt.Errorf("create user: duplicate"))
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: existingID, Email: "a@x.com"}, nil).Once()
			},
			expectCreated: false,
		},
		{
			name:          "missing email",
			user:          model.User{Email: "  "},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrEmailRequired,
		},
		{
			name:          "unknown role",
			user:          model.User{Email: "a@x.com", UserRole: "Pilot"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, nil, nil)
			user := tt.user
			got, created, err := service.Register(context.Background(), &user)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.expectCreated, created)
				assert.Equal(t, "a@x.com", got.Email)
				if !created {
					assert.Equal(t, existingID, got.ID)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@x.com" && u.Name == "N" && u.UserRole == model.RoleUnset
	})).Return(&model.User{Email: "new@x.com", Name: "N"}, true, nil)

	service := NewUserService(mockRepo, nil, nil)
	user, created, err := service.UpdateProfile(context.Background(), " new@x.com ", ProfileUpdate{Name: "N"})

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "N", user.Name)
	mockRepo.AssertExpectations(t)

	_, _, err = service.UpdateProfile(context.Background(), "", ProfileUpdate{})
	assert.Equal(t, errors.ErrEmailRequired, err)
}

func TestUserService_UpdateRole(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name          string
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
		expectEvents  []string
	}{
		{
			name: "promote to delivery man",
			role: model.RoleDeliveryMan,
			setupMock: func(m *MockUserRepository) {
				m.On("UpdateRole", mock.Anything, id, model.RoleDeliveryMan).Return(true, nil)
				m.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Email: "d@x.com", UserRole: model.RoleDeliveryMan}, nil)
			},
			expectEvents: []string{events.UserRoleChanged},
		},
		{
			name: "unknown user",
			role: model.RoleAdmin,
			setupMock: func(m *MockUserRepository) {
				m.On("UpdateRole", mock.Anything, id, model.RoleAdmin).Return(false, nil)
			},
			expectedError: errors.ErrUserNotFound,
			expectEvents:  []string{},
		},
		{
			name:          "role outside the closed set",
			role:          "Superuser",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: errors.ErrInvalidRole,
			expectEvents:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			publisher := &recordingPublisher{}

			service := NewUserService(mockRepo, nil, publisher)
			user, err := service.UpdateRole(context.Background(), id, tt.role)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.role, user.UserRole)
			}
			assert.Equal(t, tt.expectEvents, publisher.keys())
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateRoleIgnoresPublishFailure(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("UpdateRole", mock.Anything, id, model.RoleAdmin).Return(true, nil)
	mockRepo.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, UserRole: model.RoleAdmin}, nil)

	service := NewUserService(mockRepo, nil, &recordingPublisher{err: fmt.Errorf("broker down")})
	user, err := service.UpdateRole(context.Background(), id, model.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.UserRole)
}

func TestUserService_ListByRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("ListByRole", mock.Anything, model.RoleDeliveryMan).Return([]model.User{
		{Email: "d1@x.com", UserRole: model.RoleDeliveryMan},
		{Email: "d2@x.com", UserRole: model.RoleDeliveryMan},
	}, nil)

	service := NewUserService(mockRepo, nil, nil)
	users, err := service.ListByRole(context.Background(), model.RoleDeliveryMan)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = service.ListByRole(context.Background(), "Pilot")
	assert.Equal(t, errors.ErrInvalidRole, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Exists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{Email: "a@x.com"}, nil)
	mockRepo.On("FindByEmail", mock.Anything, "b@x.com").Return(nil, nil)

	service := NewUserService(mockRepo, nil, nil)

	ok, err := service.Exists(context.Background(), "a@x.com")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Exists(context.Background(), "b@x.com")
	assert.NoError(t, err)
	assert.False(t, ok)
}
