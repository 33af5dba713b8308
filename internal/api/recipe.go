package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

// RecipeHandler serves recipes, the favorite and shopping cart toggles and
// the shopping list download.
type RecipeHandler struct {
	authService         service.IAuthService
	recipeService       service.IRecipeService
	membershipService   service.IMembershipService
	shoppingService     service.IShoppingListService
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
	log                 logrus.FieldLogger
}

// RecipeHandlerDeps groups the collaborators of RecipeHandler. Nil limiters
// disable rate limiting.
type RecipeHandlerDeps struct {
	AuthService         service.IAuthService
	RecipeService       service.IRecipeService
	MembershipService   service.IMembershipService
	ShoppingService     service.IShoppingListService
	CreationLimiter     *middleware.RateLimiter
	ModificationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(deps RecipeHandlerDeps, log logrus.FieldLogger) *RecipeHandler {
	return &RecipeHandler{
		authService:         deps.AuthService,
		recipeService:       deps.RecipeService,
		membershipService:   deps.MembershipService,
		shoppingService:     deps.ShoppingService,
		creationLimiter:     deps.CreationLimiter,
		modificationLimiter: deps.ModificationLimiter,
		log:                 log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	create := []gin.HandlerFunc{required}
	if h.creationLimiter != nil {
		create = append(create, h.creationLimiter.RateLimitMiddleware())
	}
	modify := []gin.HandlerFunc{required}
	if h.modificationLimiter != nil {
		modify = append(modify, h.modificationLimiter.PerRecipeRateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", append(create, h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", append(modify, h.UpdateRecipe)...)
		recipes.PUT("/:id", append(modify, h.UpdateRecipe)...)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/ingredients", append(modify, h.AddIngredient)...)
		recipes.POST("/:id/favorite", required, h.membershipAdd(service.Favorites))
		recipes.DELETE("/:id/favorite", required, h.membershipRemove(service.Favorites))
		recipes.POST("/:id/shopping_cart", required, h.membershipAdd(service.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart", required, h.membershipRemove(service.ShoppingCart))
	}
}

// ListRecipes supports the tags, author, is_favorited and
// is_in_shopping_cart filters plus pagination.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filter := types.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      flagQuery(c, "is_favorited"),
		IsInShoppingCart: flagQuery(c, "is_in_shopping_cart"),
		Page:             page,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apperror.Validation(apperror.ReasonInvalidField, "author", "author must be a user id"))
			return
		}
		filter.AuthorID = &authorID
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), middleware.CurrentUserID(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := uuidParam(c, h.log, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces the recipe's content, ingredients and tags.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := uuidParam(c, h.log, "id", "recipe")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := uuidParam(c, h.log, "id", "recipe")
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddIngredient adds one ingredient line to an owned recipe; re-adding an
// ingredient accumulates its amount.
func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	id, ok := uuidParam(c, h.log, "id", "recipe")
	if !ok {
		return
	}
	var item types.IngredientAmount
	if !bindJSON(c, h.log, &item) {
		return
	}

	recipe, err := h.recipeService.AddIngredient(c.Request.Context(), middleware.CurrentUserID(c), id, item)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) membershipAdd(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, h.log, "id", "recipe")
		if !ok {
			return
		}

		short, err := h.membershipService.Add(c.Request.Context(), kind, middleware.CurrentUserID(c), id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

func (h *RecipeHandler) membershipRemove(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, h.log, "id", "recipe")
		if !ok {
			return
		}

		if err := h.membershipService.Remove(c.Request.Context(), kind, middleware.CurrentUserID(c), id); err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the aggregated shopping list as a text
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	body, err := h.shoppingService.Export(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
