package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the services behind the /api routes.
type Dependencies struct {
	Auth       service.IAuthService
	Users      service.IUserService
	Catalog    service.ICatalogService
	Recipes    service.IRecipeService
	Membership service.IMembershipService
	Follows    service.IFollowService
	Shopping   service.IShoppingListService

	// Optional; nil disables the corresponding limit.
	CreationLimiter     *middleware.RateLimiter
	ModificationLimiter *middleware.RateLimiter
}

// SetupAPI registers every resource handler on group.
func SetupAPI(group *gin.RouterGroup, deps Dependencies, log logrus.FieldLogger) {
	authHandler := NewAuthHandler(deps.Auth, log)
	userHandler := NewUserHandler(deps.Auth, deps.Users, deps.Follows, log)
	catalogHandler := NewCatalogHandler(deps.Catalog, log)
	recipeHandler := NewRecipeHandler(RecipeHandlerDeps{
		AuthService:         deps.Auth,
		RecipeService:       deps.Recipes,
		MembershipService:   deps.Membership,
		ShoppingService:     deps.Shopping,
		CreationLimiter:     deps.CreationLimiter,
		ModificationLimiter: deps.ModificationLimiter,
	}, log)

	authHandler.RegisterRoutes(group)
	userHandler.RegisterRoutes(group)
	catalogHandler.RegisterRoutes(group)
	recipeHandler.RegisterRoutes(group)
}

// DependenciesFor exposes services through the handler interfaces.
func DependenciesFor(s *service.Services) Dependencies {
	return Dependencies{
		Auth:       s.Auth,
		Users:      s.Users,
		Catalog:    s.Catalog,
		Recipes:    s.Recipes,
		Membership: s.Membership,
		Follows:    s.Follows,
		Shopping:   s.Shopping,
	}
}
