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
)

// MembershipKind selects which per-user recipe set a toggle acts on.
type MembershipKind int

const (
	Favorites MembershipKind = iota
	ShoppingCart
)

func (k MembershipKind) String() string {
	if k == ShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

func (k MembershipKind) row(userID, recipeID uuid.UUID) interface{} {
	if k == ShoppingCart {
		return &models.ShoppingListEntry{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (k MembershipKind) model() interface{} {
	if k == ShoppingCart {
		return &models.ShoppingListEntry{}
	}
	return &models.Favorite{}
}

// MembershipService toggles a recipe in a user's favorites or shopping cart.
// The acting user is always explicit; nobody edits another user's sets.
type MembershipService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewMembershipService(db *gorm.DB, log logrus.FieldLogger) *MembershipService {
	return &MembershipService{db: db, log: log}
}

// Add puts the recipe in the user's set and returns its short view.
func (s *MembershipService) Add(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) (*types.RecipeShortView, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	alreadyExists := apperror.Conflict(apperror.ReasonAlreadyExists,
		fmt.Sprintf("recipe is already in %s", kind))

	var count int64
	err := db.Model(kind.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if count > 0 {
		return nil, alreadyExists
	}

	// A concurrent add can still win the race; the unique index decides.
	if err := db.Create(kind.row(userID, recipeID)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, alreadyExists
		}
		if database.IsForeignKeyViolation(err) {
			return nil, apperror.NotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("failed to add to %s: %w", kind, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).Debugf("added to %s", kind)
	view := shortView(&recipe)
	return &view, nil
}

// Remove deletes the recipe from the user's set.
func (s *MembershipService) Remove(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(kind.model())
	if res.Error != nil {
		return fmt.Errorf("failed to remove from %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundReason(apperror.ReasonNotFound, fmt.Sprintf("recipe is not in %s", kind))
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID}).Debugf("removed from %s", kind)
	return nil
}
