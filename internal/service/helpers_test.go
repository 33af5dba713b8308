package service_test

import (
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	recipes    *service.RecipeService
	membership *service.MembershipService
	follows    *service.FollowService
	shopping   *service.ShoppingListService
	users      *service.UserService
	catalog    *service.CatalogService
	auth       *service.AuthService
	mediaDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t).DB
	log := logging.Discard()
	mediaDir := t.TempDir()

	return &testEnv{
		db:         db,
		recipes:    service.NewRecipeService(db, service.NewLocalImageStore(mediaDir, "/media"), log),
		membership: service.NewMembershipService(db, log),
		follows:    service.NewFollowService(db, log),
		shopping:   service.NewShoppingListService(db),
		users:      service.NewUserService(db),
		catalog:    service.NewCatalogService(db),
		auth:       service.NewAuthService(db, "test-secret", time.Hour, log),
		mediaDir:   mediaDir,
	}
}
