package service

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services bundles every service over one database.
type Services struct {
	Auth       *AuthService
	Users      *UserService
	Catalog    *CatalogService
	Recipes    *RecipeService
	Membership *MembershipService
	Follows    *FollowService
	Shopping   *ShoppingListService
}

func NewServices(db *gorm.DB, images ImageStore, jwtSecret string, tokenTTL time.Duration, log logrus.FieldLogger) *Services {
	return &Services{
		Auth:       NewAuthService(db, jwtSecret, tokenTTL, log.WithField("service", "auth")),
		Users:      NewUserService(db),
		Catalog:    NewCatalogService(db),
		Recipes:    NewRecipeService(db, images, log.WithField("service", "recipes")),
		Membership: NewMembershipService(db, log.WithField("service", "membership")),
		Follows:    NewFollowService(db, log.WithField("service", "follows")),
		Shopping:   NewShoppingListService(db),
	}
}
