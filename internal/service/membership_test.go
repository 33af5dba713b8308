package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipToggle(t *testing.T) {
	for _, kind := range []service.MembershipKind{service.Favorites, service.ShoppingCart} {
		t.Run(kind.String(), func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			author := testhelpers.CreateUser(t, env.db, "chef")
			user := testhelpers.CreateUser(t, env.db, "user")
			salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
			recipe := testhelpers.CreateRecipe(t, env.db, author, "Brine", []testhelpers.IngredientLine{{Ingredient: salt, Amount: 1}})

			short, err := env.membership.Add(ctx, kind, user.ID, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "Brine", short.Name)
			assert.Equal(t, 10, short.CookingTime)

			_, err = env.membership.Add(ctx, kind, user.ID, recipe.ID)
			assert.ErrorIs(t, err, apperror.ErrConflict)
			assert.Equal(t, apperror.ReasonAlreadyExists, apperror.ReasonOf(err))

			// Another user's set is independent.
			_, err = env.membership.Add(ctx, kind, author.ID, recipe.ID)
			assert.NoError(t, err)

			require.NoError(t, env.membership.Remove(ctx, kind, user.ID, recipe.ID))

			err = env.membership.Remove(ctx, kind, user.ID, recipe.ID)
			assert.ErrorIs(t, err, apperror.ErrNotFound)

			_, err = env.membership.Add(ctx, kind, user.ID, uuid.New())
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}

func TestMembershipKindsAreSeparate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, env.db, "user")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, user, "Brine", []testhelpers.IngredientLine{{Ingredient: salt, Amount: 1}})

	_, err := env.membership.Add(ctx, service.Favorites, user.ID, recipe.ID)
	require.NoError(t, err)

	err = env.membership.Remove(ctx, service.ShoppingCart, user.ID, recipe.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	view, err := env.recipes.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)
}
