package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, env.db, "shopper")
	salt := testhelpers.CreateIngredient(t, env.db, "Salt", "g")
	pepper := testhelpers.CreateIngredient(t, env.db, "Pepper", "g")

	r1 := testhelpers.CreateRecipe(t, env.db, user, "R1", []testhelpers.IngredientLine{{Ingredient: salt, Amount: 5}})
	r2 := testhelpers.CreateRecipe(t, env.db, user, "R2", []testhelpers.IngredientLine{
		{Ingredient: salt, Amount: 3},
		{Ingredient: pepper, Amount: 1},
	})
	testhelpers.AddToShoppingList(t, env.db, user.ID, r1.ID)
	testhelpers.AddToShoppingList(t, env.db, user.ID, r2.ID)

	items, err := env.shopping.Aggregate(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, types.ShoppingListItem{IngredientID: pepper.ID, Name: "Pepper", MeasurementUnit: "g", TotalAmount: 1}, items[0])
	assert.Equal(t, types.ShoppingListItem{IngredientID: salt.ID, Name: "Salt", MeasurementUnit: "g", TotalAmount: 8}, items[1])

	export, err := env.shopping.Export(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pepper 1 g,\nSalt 8 g,\n", string(export))
}

func TestAggregateGroupsByIngredientIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, env.db, "shopper")
	saltGrams := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	saltPinch := testhelpers.CreateIngredient(t, env.db, "salt", "pinch")

	r1 := testhelpers.CreateRecipe(t, env.db, user, "R1", []testhelpers.IngredientLine{{Ingredient: saltGrams, Amount: 2.5}})
	r2 := testhelpers.CreateRecipe(t, env.db, user, "R2", []testhelpers.IngredientLine{{Ingredient: saltPinch, Amount: 1}})
	testhelpers.AddToShoppingList(t, env.db, user.ID, r1.ID)
	testhelpers.AddToShoppingList(t, env.db, user.ID, r2.ID)

	items, err := env.shopping.Aggregate(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	totals := map[uuid.UUID]float64{}
	for _, item := range items {
		totals[item.IngredientID] = item.TotalAmount
	}
	assert.Equal(t, map[uuid.UUID]float64{saltGrams.ID: 2.5, saltPinch.ID: 1}, totals)
}

func TestAggregateOnlyCountsOwnList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")
	r := testhelpers.CreateRecipe(t, env.db, alice, "Bread", []testhelpers.IngredientLine{{Ingredient: flour, Amount: 500}})
	testhelpers.AddToShoppingList(t, env.db, alice.ID, r.ID)

	items, err := env.shopping.Aggregate(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	export, err := env.shopping.Export(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, export)
}

func TestFormatShoppingList(t *testing.T) {
	items := []types.ShoppingListItem{
		{Name: "cAYENNE pepper", MeasurementUnit: "g", TotalAmount: 2.5},
		{Name: "ёлочная соль", MeasurementUnit: "кг", TotalAmount: 8},
		{Name: "", MeasurementUnit: "pcs", TotalAmount: 1.25},
	}

	assert.Equal(t,
		"Cayenne pepper 2.5 g,\nЁлочная соль 8 кг,\n 1.25 pcs,\n",
		string(service.FormatShoppingList(items)))
	assert.Empty(t, service.FormatShoppingList(nil))
}
