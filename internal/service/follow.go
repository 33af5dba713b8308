package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowService manages subscriptions to other users' recipes.
type FollowService struct {
	db        *gorm.DB
	presenter *Presenter
	log       logrus.FieldLogger
}

func NewFollowService(db *gorm.DB, log logrus.FieldLogger) *FollowService {
	return &FollowService{db: db, presenter: NewPresenter(db), log: log}
}

// Follow subscribes followerID to authorID and returns the author's
// subscription view.
func (s *FollowService) Follow(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	if followerID == authorID {
		return nil, apperror.Conflict(apperror.ReasonSelfFollow, "you cannot subscribe to yourself")
	}

	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", authorID.String())
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	alreadyFollowing := apperror.Conflict(apperror.ReasonAlreadyFollowing,
		fmt.Sprintf("already subscribed to %s", author.Username))

	var count int64
	err := db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if count > 0 {
		return nil, alreadyFollowing
	}

	follow := &models.Follow{UserID: followerID, AuthorID: authorID}
	if err := db.Omit(clause.Associations).Create(follow).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, alreadyFollowing
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": followerID, "author_id": authorID}).Info("subscribed")

	views, err := s.presenter.Subscriptions(ctx, []models.User{author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unfollow removes the subscription of followerID to authorID.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundReason(apperror.ReasonNotFollowing, "you are not subscribed to this user")
	}

	s.log.WithFields(logrus.Fields{"user_id": followerID, "author_id": authorID}).Info("unsubscribed")
	return nil
}

// ListSubscriptions pages through the authors userID follows, oldest
// subscription first, each with a preview of their recipes.
func (s *FollowService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page types.Page, recipesLimit int) (*types.ListResponse[types.SubscriptionView], error) {
	page = page.Normalize()
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Model(&models.User{}).
		Select("users.*").
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at ASC").Order("users.id ASC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	views, err := s.presenter.Subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &types.ListResponse[types.SubscriptionView]{Count: count, Results: views}, nil
}
