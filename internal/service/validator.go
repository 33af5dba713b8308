package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const (
	maxRecipeNameLen = 200
	minCookingTime   = 1
	minAmount        = 1
)

// ValidatedRecipe is a recipe payload that passed the composition checks.
// Ingredient order follows the payload; tag ids are unique.
type ValidatedRecipe struct {
	Name        string
	Text        string
	CookingTime int
	Ingredients []types.IngredientAmount
	TagIDs      []uuid.UUID
	Image       string
}

// CompositionValidator enforces the recipe composition rules before any
// recipe row is written.
type CompositionValidator struct{}

// Check runs the checks that need no storage access.
func (CompositionValidator) Check(req *types.RecipeRequest) (*ValidatedRecipe, error) {
	if req == nil {
		return nil, apperror.Validation(apperror.ReasonInvalidField, "", "recipe payload is required")
	}

	if len(req.Ingredients) == 0 {
		return nil, apperror.Validation(apperror.ReasonEmptyIngredients, "ingredients", "at least one ingredient is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if _, dup := seen[item.ID]; dup {
			return nil, apperror.Validation(apperror.ReasonDuplicateIngredient, "ingredients",
				fmt.Sprintf("ingredient %s is listed more than once", item.ID))
		}
		seen[item.ID] = struct{}{}
	}

	if req.CookingTime < minCookingTime {
		return nil, apperror.Validation(apperror.ReasonInvalidCookingTime, "cooking_time",
			fmt.Sprintf("cooking time must be at least %d", minCookingTime))
	}

	for _, item := range req.Ingredients {
		if item.ID == uuid.Nil {
			return nil, apperror.Validation(apperror.ReasonUnknownReference, "ingredients", "ingredient id is required")
		}
		if item.Amount < minAmount {
			return nil, apperror.Validation(apperror.ReasonInvalidAmount, "ingredients",
				fmt.Sprintf("amount of ingredient %s must be at least %d", item.ID, minAmount))
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxRecipeNameLen {
		return nil, apperror.Validation(apperror.ReasonInvalidField, "name",
			fmt.Sprintf("name must be between 1 and %d characters", maxRecipeNameLen))
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperror.Validation(apperror.ReasonInvalidField, "text", "text is required")
	}

	tagIDs := make([]uuid.UUID, 0, len(req.Tags))
	seenTags := make(map[uuid.UUID]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			continue
		}
		seenTags[id] = struct{}{}
		tagIDs = append(tagIDs, id)
	}

	ingredients := make([]types.IngredientAmount, len(req.Ingredients))
	copy(ingredients, req.Ingredients)

	return &ValidatedRecipe{
		Name:        name,
		Text:        text,
		CookingTime: req.CookingTime,
		Ingredients: ingredients,
		TagIDs:      tagIDs,
		Image:       strings.TrimSpace(req.Image),
	}, nil
}

// CheckReferences verifies that every ingredient and tag exists. It runs on
// the caller's transaction so the check and the write see the same rows.
func (CompositionValidator) CheckReferences(ctx context.Context, tx *gorm.DB, v *ValidatedRecipe) error {
	ids := make([]uuid.UUID, len(v.Ingredients))
	for i, item := range v.Ingredients {
		ids[i] = item.ID
	}
	if err := ensureExist(ctx, tx, &models.Ingredient{}, "ingredients", ids); err != nil {
		return err
	}
	return ensureExist(ctx, tx, &models.Tag{}, "tags", v.TagIDs)
}

// Validate runs both phases against db.
func (c CompositionValidator) Validate(ctx context.Context, db *gorm.DB, req *types.RecipeRequest) (*ValidatedRecipe, error) {
	v, err := c.Check(req)
	if err != nil {
		return nil, err
	}
	if err := c.CheckReferences(ctx, db, v); err != nil {
		return nil, err
	}
	return v, nil
}

func ensureExist(ctx context.Context, tx *gorm.DB, model interface{}, field string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uuid.UUID
	if err := tx.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", field, err)
	}
	if len(found) == len(ids) {
		return nil
	}

	present := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return apperror.Validation(apperror.ReasonUnknownReference, field,
				fmt.Sprintf("%s references unknown id %s", field, id))
		}
	}
	return nil
}
