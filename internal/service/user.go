package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// UserService reads user profiles as seen by a viewer.
type UserService struct {
	db        *gorm.DB
	presenter *Presenter
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, presenter: NewPresenter(db)}
}

func (s *UserService) GetUser(ctx context.Context, viewerID, userID uuid.UUID) (*types.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", userID.String())
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.presenter.User(ctx, viewerID, &user)
}

// ListUsers pages through users in registration order.
func (s *UserService) ListUsers(ctx context.Context, viewerID uuid.UUID, page types.Page) (*types.ListResponse[types.UserView], error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := db.Order("created_at ASC").Order("id ASC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views, err := s.presenter.Users(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &types.ListResponse[types.UserView]{Count: count, Results: views}, nil
}
