package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TestPassword is the plain password of every fixture user.
const TestPassword = "s3cret-pass"

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	var count int64
	db.Model(&models.Tag{}).Count(&count)
	tag := &models.Tag{Name: name, Slug: slug, Color: fmt.Sprintf("#%06X", count+1)}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// IngredientLine pairs an ingredient with an amount for CreateRecipe.
type IngredientLine struct {
	Ingredient *models.Ingredient
	Amount     float64
}

// CreateRecipe inserts a recipe straight into storage, bypassing validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines []IngredientLine, tags ...*models.Tag) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		Text:        name + " instructions",
		CookingTime: 10,
		AuthorID:    author.ID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		for i, line := range lines {
			ri := &models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: line.Ingredient.ID,
				Amount:       line.Amount,
				Position:     i,
			}
			if err := tx.Omit(clause.Associations).Create(ri).Error; err != nil {
				return err
			}
		}
		if len(tags) > 0 {
			tagModels := make([]models.Tag, len(tags))
			for i, tag := range tags {
				tagModels[i] = *tag
			}
			if err := tx.Model(recipe).Association("Tags").Replace(tagModels); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// AddToShoppingList puts a recipe on a user's shopping list.
func AddToShoppingList(t *testing.T, db *gorm.DB, userID, recipeID uuid.UUID) {
	t.Helper()
	if err := db.Create(&models.ShoppingListEntry{UserID: userID, RecipeID: recipeID}).Error; err != nil {
		t.Fatalf("failed to add shopping list entry: %v", err)
	}
}

func AddFavorite(t *testing.T, db *gorm.DB, userID, recipeID uuid.UUID) {
	t.Helper()
	if err := db.Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error; err != nil {
		t.Fatalf("failed to add favorite: %v", err)
	}
}

func AddFollow(t *testing.T, db *gorm.DB, userID, authorID uuid.UUID) {
	t.Helper()
	if err := db.Omit(clause.Associations).Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
		t.Fatalf("failed to add follow: %v", err)
	}
}
