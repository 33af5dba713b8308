package testhelpers

import (
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatabaseSetup(t *testing.T) {
	db := SetupSQLiteDB(t)
	require.NotNil(t, db)

	user := CreateUser(t, db.DB, "tester")
	assert.NotZero(t, user.ID)

	salt := CreateIngredient(t, db.DB, "salt", "g")
	water := CreateIngredient(t, db.DB, "water", "ml")
	tag := CreateTag(t, db.DB, "Soup", "soup")
	assert.Equal(t, "#000001", tag.Color)

	recipe := CreateRecipe(t, db.DB, user, "Brine",
		[]IngredientLine{{Ingredient: water, Amount: 500}, {Ingredient: salt, Amount: 30}}, tag)

	var loaded models.Recipe
	err := db.Preload("Tags").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		First(&loaded, "id = ?", recipe.ID).Error
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.AuthorID)
	require.Len(t, loaded.Tags, 1)
	require.Len(t, loaded.Ingredients, 2)
	assert.Equal(t, water.ID, loaded.Ingredients[0].IngredientID)
	assert.Equal(t, 30.0, loaded.Ingredients[1].Amount)

	AddFavorite(t, db.DB, user.ID, recipe.ID)
	AddToShoppingList(t, db.DB, user.ID, recipe.ID)

	var favorites, entries int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&favorites).Error)
	require.NoError(t, db.Model(&models.ShoppingListEntry{}).Count(&entries).Error)
	assert.Equal(t, int64(1), favorites)
	assert.Equal(t, int64(1), entries)
}
