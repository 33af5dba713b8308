package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")

	_, err := env.follows.Follow(ctx, alice.ID, alice.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.ReasonSelfFollow, apperror.ReasonOf(err))

	// Self-follow is rejected even for an unknown id.
	ghost := uuid.New()
	_, err = env.follows.Follow(ctx, ghost, ghost, 0)
	assert.Equal(t, apperror.ReasonSelfFollow, apperror.ReasonOf(err))

	view, err := env.follows.Follow(ctx, alice.ID, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, view.ID)
	assert.True(t, view.IsSubscribed)
	assert.Zero(t, view.RecipesCount)
	assert.Empty(t, view.Recipes)

	_, err = env.follows.Follow(ctx, alice.ID, bob.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.ReasonAlreadyFollowing, apperror.ReasonOf(err))

	_, err = env.follows.Follow(ctx, alice.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, env.follows.Unfollow(ctx, alice.ID, bob.ID))

	err = env.follows.Unfollow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, apperror.ReasonNotFollowing, apperror.ReasonOf(err))
}

func TestListSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reader := testhelpers.CreateUser(t, env.db, "reader")
	prolific := testhelpers.CreateUser(t, env.db, "prolific")
	quiet := testhelpers.CreateUser(t, env.db, "quiet")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	line := []testhelpers.IngredientLine{{Ingredient: salt, Amount: 1}}

	for _, name := range []string{"One", "Two", "Three"} {
		testhelpers.CreateRecipe(t, env.db, prolific, name, line)
	}

	_, err := env.follows.Follow(ctx, reader.ID, prolific.ID, 0)
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, reader.ID, quiet.ID, 0)
	require.NoError(t, err)

	subs, err := env.follows.ListSubscriptions(ctx, reader.ID, types.Page{}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), subs.Count)
	require.Len(t, subs.Results, 2)

	byID := map[uuid.UUID]types.SubscriptionView{}
	for _, s := range subs.Results {
		byID[s.ID] = s
		assert.True(t, s.IsSubscribed)
	}
	assert.Len(t, byID[prolific.ID].Recipes, 2)
	assert.Equal(t, int64(3), byID[prolific.ID].RecipesCount)
	assert.Empty(t, byID[quiet.ID].Recipes)
	assert.Zero(t, byID[quiet.ID].RecipesCount)

	unlimited, err := env.follows.ListSubscriptions(ctx, reader.ID, types.Page{Limit: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unlimited.Count)
	require.Len(t, unlimited.Results, 1)

	others, err := env.follows.ListSubscriptions(ctx, quiet.ID, types.Page{}, 0)
	require.NoError(t, err)
	assert.Zero(t, others.Count)
	assert.Empty(t, others.Results)
}

func TestUserViewsReportSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	carol := testhelpers.CreateUser(t, env.db, "carol")
	testhelpers.AddFollow(t, env.db, alice.ID, bob.ID)

	// Following bob says nothing about carol.
	view, err := env.users.GetUser(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	view, err = env.users.GetUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	list, err := env.users.ListUsers(ctx, alice.ID, types.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Count)
	for _, u := range list.Results {
		assert.Equal(t, u.ID == bob.ID, u.IsSubscribed, u.Username)
	}

	_, err = env.users.GetUser(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
