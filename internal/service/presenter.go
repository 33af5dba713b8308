package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// Presenter turns models into viewer-relative views. Flags are computed with
// one query per flag for the whole batch. An anonymous viewer is uuid.Nil
// and sees every flag false.
type Presenter struct {
	db *gorm.DB
}

func NewPresenter(db *gorm.DB) *Presenter {
	return &Presenter{db: db}
}

// preloadRecipe loads everything a RecipeView needs.
func preloadRecipe(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.position ASC") }).
		Preload("Ingredients.Ingredient")
}

// Users builds user views with is_subscribed relative to viewerID.
func (p *Presenter) Users(ctx context.Context, viewerID uuid.UUID, users []models.User) ([]types.UserView, error) {
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := p.followedSet(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.UserView, len(users))
	for i := range users {
		views[i] = userView(&users[i], followed[users[i].ID])
	}
	return views, nil
}

// User builds one user view.
func (p *Presenter) User(ctx context.Context, viewerID uuid.UUID, user *models.User) (*types.UserView, error) {
	views, err := p.Users(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Recipes builds full recipe views. Recipes must be loaded with preloadRecipe.
func (p *Presenter) Recipes(ctx context.Context, viewerID uuid.UUID, recipes []models.Recipe) ([]types.RecipeView, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seenAuthor := make(map[uuid.UUID]struct{})
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		if _, ok := seenAuthor[recipes[i].AuthorID]; !ok {
			seenAuthor[recipes[i].AuthorID] = struct{}{}
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}
	}

	favorited, err := p.membershipSet(ctx, &models.Favorite{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.membershipSet(ctx, &models.ShoppingListEntry{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := p.followedSet(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		view := types.RecipeView{
			ID:               r.ID,
			Tags:             make([]types.TagView, len(r.Tags)),
			Author:           userView(&r.Author, followed[r.AuthorID]),
			Ingredients:      make([]types.RecipeIngredientView, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		}
		for j := range r.Tags {
			view.Tags[j] = tagView(&r.Tags[j])
		}
		for j, ri := range r.Ingredients {
			view.Ingredients[j] = types.RecipeIngredientView{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		views[i] = view
	}
	return views, nil
}

// Subscriptions builds subscription views for authors the viewer follows.
// recipesLimit <= 0 means no cap on the nested recipes.
func (p *Presenter) Subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	counts, err := p.recipeCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.SubscriptionView, len(authors))
	for i := range authors {
		q := p.db.WithContext(ctx).
			Where("author_id = ?", authors[i].ID).
			Order("pub_date DESC").Order("id DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to load recipes of %s: %w", authors[i].ID, err)
		}

		short := make([]types.RecipeShortView, len(recipes))
		for j := range recipes {
			short[j] = shortView(&recipes[j])
		}
		views[i] = types.SubscriptionView{
			UserView:     userView(&authors[i], true),
			Recipes:      short,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return views, nil
}

func (p *Presenter) followedSet(ctx context.Context, viewerID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewerID == uuid.Nil || len(authorIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (p *Presenter) membershipSet(ctx context.Context, model interface{}, viewerID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewerID == uuid.Nil || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

type authorCount struct {
	AuthorID uuid.UUID
	Total    int64
}

func (p *Presenter) recipeCounts(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []authorCount
	err := p.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func userView(u *models.User, subscribed bool) types.UserView {
	return types.UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func tagView(t *models.Tag) types.TagView {
	return types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientView(i *models.Ingredient) types.IngredientView {
	return types.IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func shortView(r *models.Recipe) types.RecipeShortView {
	return types.RecipeShortView{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}
