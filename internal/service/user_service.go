package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"parcelbook/internal/cache"
	"parcelbook/internal/errors"
	"parcelbook/internal/events"
	"parcelbook/internal/model"
	"parcelbook/internal/repository"
)

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name   string
	ImgURL string
	Phone  string
}

// UserService exposes the account registry.
type UserService interface {
	Register(ctx context.Context, user *model.User) (*model.User, bool, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, email string, profile ProfileUpdate) (*model.User, bool, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error)
	Delete(ctx context.Context, email string) (int64, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, email string) (bool, error)
}

type userService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	publisher events.Publisher
}

// NewUserService builds a UserService with repository, cache and event publisher.
func NewUserService(repo repository.UserRepository, cache *cache.Client, publisher events.Publisher) UserService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &userService{repo: repo, cache: cache, publisher: publisher}
}

// Register stores a new user. When the email is already registered the existing record is
// returned with created=false and nothing is written.
func (s *userService) Register(ctx context.Context, user *model.User) (*model.User, bool, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return nil, false, errors.ErrEmailRequired
	}
	if !user.UserRole.Valid() {
		return nil, false, errors.ErrInvalidRole
	}

	existing, err := s.repo.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	user.ID = uuid.Nil
	if err := s.repo.Create(ctx, user); err != nil {
		// A concurrent registration may have won the unique index.
		if winner, findErr := s.repo.FindByEmail(ctx, user.Email); findErr == nil && winner != nil {
			return winner, false, nil
		}
		return nil, false, err
	}
	_ = s.cache.Delete(ctx, statsCacheKey)
	return user, true, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *userService) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile writes name, imgUrl and phone for the email, creating the user if needed.
func (s *userService) UpdateProfile(ctx context.Context, email string, profile ProfileUpdate) (*model.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, errors.ErrEmailRequired
	}
	user, created, err := s.repo.UpsertProfile(ctx, &model.User{
		Email:  email,
		Name:   profile.Name,
		ImgURL: profile.ImgURL,
		Phone:  profile.Phone,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		_ = s.cache.Delete(ctx, statsCacheKey)
	}
	return user, created, nil
}

// UpdateRole changes the role of an existing user. Unknown ids are ErrUserNotFound.
func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, errors.ErrInvalidRole
	}
	found, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}

	evt := events.UserEvent{
		UserID:     user.ID.String(),
		Email:      user.Email,
		Role:       string(user.UserRole),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.UserRoleChanged, evt); err != nil {
		slog.WarnContext(ctx, "publish event failed", "key", events.UserRoleChanged, "user_id", evt.UserID, "error", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, email string) (int64, error) {
	n, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_ = s.cache.Delete(ctx, statsCacheKey)
	}
	return n, nil
}

func (s *userService) ListAll(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	if !role.Valid() {
		return nil, errors.ErrInvalidRole
	}
	return s.repo.ListByRole(ctx, role)
}

func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Exists reports whether an account with the email is registered.
func (s *userService) Exists(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("lookup owner: %w", err)
	}
	return user != nil, nil
}
