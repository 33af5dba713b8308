package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines the interface for reading user profiles
type IUserService interface {
	GetUser(ctx context.Context, viewerID, userID uuid.UUID) (*types.UserView, error)
	ListUsers(ctx context.Context, viewerID uuid.UUID, page types.Page) (*types.ListResponse[types.UserView], error)
}

// ICatalogService defines the interface for ingredient and tag reference data
type ICatalogService interface {
	ListIngredients(ctx context.Context, filter types.IngredientFilter) ([]types.IngredientView, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientView, error)
	ListTags(ctx context.Context) ([]types.TagView, error)
	GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error)
	UpsertIngredient(ctx context.Context, name, unit string) (*models.Ingredient, bool, error)
	UpsertTag(ctx context.Context, name, color, slug string) (*models.Tag, bool, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeView, error)
	UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeView, error)
	DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error
	GetRecipe(ctx context.Context, viewerID, recipeID uuid.UUID) (*types.RecipeView, error)
	ListRecipes(ctx context.Context, viewerID uuid.UUID, filter types.RecipeFilter) (*types.ListResponse[types.RecipeView], error)
	AddIngredient(ctx context.Context, actorID, recipeID uuid.UUID, item types.IngredientAmount) (*types.RecipeView, error)
}

// IMembershipService defines the favorite and shopping cart toggles
type IMembershipService interface {
	Add(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) (*types.RecipeShortView, error)
	Remove(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error
}

// IFollowService defines the interface for subscriptions between users
type IFollowService interface {
	Follow(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error)
	Unfollow(ctx context.Context, followerID, authorID uuid.UUID) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID, page types.Page, recipesLimit int) (*types.ListResponse[types.SubscriptionView], error)
}

// IShoppingListService defines shopping list aggregation and export
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error)
	Export(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// ImageStore persists recipe images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ IFollowService       = (*FollowService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
	_ ImageStore           = (*LocalImageStore)(nil)
)
