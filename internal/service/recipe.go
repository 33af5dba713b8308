package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db        *gorm.DB
	validator CompositionValidator
	presenter *Presenter
	images    ImageStore
	log       logrus.FieldLogger
}

// NewRecipeService creates a new RecipeService instance. images may be nil,
// in which case payloads carrying an image are rejected.
func NewRecipeService(db *gorm.DB, images ImageStore, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{
		db:        db,
		presenter: NewPresenter(db),
		images:    images,
		log:       log,
	}
}

// CreateRecipe validates the payload and stores the recipe with its
// ingredients and tags in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeView, error) {
	v, err := s.validator.Check(req)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        v.Name,
		Text:        v.Text,
		CookingTime: v.CookingTime,
		AuthorID:    authorID,
	}

	var uploaded string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validator.CheckReferences(ctx, tx, v); err != nil {
			return err
		}

		if v.Image != "" {
			if uploaded, err = s.storeImage(ctx, v.Image); err != nil {
				return err
			}
			recipe.Image = uploaded
		}

		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return s.writeComposition(tx, recipe, v)
	})
	if err != nil {
		s.discardImage(ctx, uploaded)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": authorID}).Info("recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields, ingredients and tags. Nothing
// changes unless every step succeeds.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeView, error) {
	v, err := s.validator.Check(req)
	if err != nil {
		return nil, err
	}

	var (
		uploaded string
		oldImage string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, actorID, recipeID)
		if err != nil {
			return err
		}
		if err := s.validator.CheckReferences(ctx, tx, v); err != nil {
			return err
		}

		image := recipe.Image
		if v.Image != "" {
			if uploaded, err = s.storeImage(ctx, v.Image); err != nil {
				return err
			}
			oldImage, image = recipe.Image, uploaded
		}

		err = tx.Model(recipe).Updates(map[string]interface{}{
			"name":         v.Name,
			"text":         v.Text,
			"cooking_time": v.CookingTime,
			"image":        image,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return s.writeComposition(tx, recipe, v)
	})
	if err != nil {
		s.discardImage(ctx, uploaded)
		return nil, err
	}

	s.discardImage(ctx, oldImage)
	s.log.WithFields(logrus.Fields{"recipe_id": recipeID, "author_id": actorID}).Info("recipe updated")
	return s.GetRecipe(ctx, actorID, recipeID)
}

// DeleteRecipe removes the recipe and every row that references it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, actorID, recipeID)
		if err != nil {
			return err
		}
		image = recipe.Image

		for _, child := range []interface{}{&models.Favorite{}, &models.ShoppingListEntry{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, image)
	s.log.WithFields(logrus.Fields{"recipe_id": recipeID, "author_id": actorID}).Info("recipe deleted")
	return nil
}

// GetRecipe retrieves a recipe by ID as seen by viewerID
func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, recipeID uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	views, err := s.presenter.Recipes(ctx, viewerID, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes, newest first, narrowed by filter.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uuid.UUID, filter types.RecipeFilter) (*types.ListResponse[types.RecipeView], error) {
	page := filter.Page.Normalize()
	empty := &types.ListResponse[types.RecipeView]{Results: []types.RecipeView{}}

	if (filter.IsFavorited || filter.IsInShoppingCart) && viewerID == uuid.Nil {
		return empty, nil
	}

	db := s.db.WithContext(ctx)
	q := db.Model(&models.Recipe{})

	if len(filter.Tags) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.IsFavorited {
		q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewerID))
	}
	if filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingListEntry{}).Select("recipe_id").Where("user_id = ?", viewerID))
	}

	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if count == 0 {
		return empty, nil
	}

	var recipes []models.Recipe
	err := preloadRecipe(q.Session(&gorm.Session{})).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Limit(page.Limit).Offset(page.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := s.presenter.Recipes(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &types.ListResponse[types.RecipeView]{Count: count, Results: views}, nil
}

// AddIngredient adds one ingredient to an existing recipe. Adding an
// ingredient the recipe already has accumulates its amount.
func (s *RecipeService) AddIngredient(ctx context.Context, actorID, recipeID uuid.UUID, item types.IngredientAmount) (*types.RecipeView, error) {
	if item.Amount < minAmount {
		return nil, apperror.Validation(apperror.ReasonInvalidAmount, "amount",
			fmt.Sprintf("amount must be at least %d", minAmount))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, actorID, recipeID)
		if err != nil {
			return err
		}
		if err := ensureExist(ctx, tx, &models.Ingredient{}, "ingredients", []uuid.UUID{item.ID}); err != nil {
			return err
		}

		var next int
		err = tx.Model(&models.RecipeIngredient{}).
			Where("recipe_id = ?", recipe.ID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return fmt.Errorf("failed to read ingredient positions: %w", err)
		}

		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
			Position:     next,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "recipe_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount": gorm.Expr("recipe_ingredients.amount + excluded.amount"),
			}),
		}).Omit(clause.Associations).Create(row).Error
		if err != nil {
			return fmt.Errorf("failed to add ingredient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, actorID, recipeID)
}

// writeComposition inserts the ingredient rows and sets the tag links.
func (s *RecipeService) writeComposition(tx *gorm.DB, recipe *models.Recipe, v *ValidatedRecipe) error {
	rows := make([]models.RecipeIngredient, len(v.Ingredients))
	for i, item := range v.Ingredients {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
			Position:     i,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to store recipe ingredients: %w", err)
	}

	var tags []models.Tag
	if len(v.TagIDs) > 0 {
		if err := tx.Where("id IN ?", v.TagIDs).Find(&tags).Error; err != nil {
			return fmt.Errorf("failed to load tags: %w", err)
		}
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to set recipe tags: %w", err)
	}
	return nil
}

func (s *RecipeService) storeImage(ctx context.Context, dataURL string) (string, error) {
	if s.images == nil {
		return "", apperror.Validation(apperror.ReasonInvalidImage, "image", "image uploads are disabled")
	}
	img, err := DecodeImage(dataURL)
	if err != nil {
		return "", err
	}
	url, err := s.images.Save(ctx, img)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		s.log.WithError(err).WithField("image", url).Warn("failed to delete recipe image")
	}
}

// loadOwnedRecipe loads a recipe and checks that actorID wrote it.
func loadOwnedRecipe(tx *gorm.DB, actorID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != actorID {
		return nil, apperror.Forbidden("only the author can change this recipe")
	}
	return &recipe, nil
}
