package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

// End-to-end flows against postgres and redis containers.

func send(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostgresRecipeFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupPostgresDB(t)
	redisClient := testhelpers.SetupRedis(t)
	log := logging.Discard()

	cfg := &config.Config{Environment: config.Test, MediaDir: t.TempDir()}
	services := service.NewServices(db.DB, service.NewLocalImageStore(cfg.MediaDir, "/media"), "integration-secret", time.Hour, log)
	deps := api.DependenciesFor(services)
	deps.CreationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, 3, time.Hour, log)
	r := router.SetupRouter(cfg, db, deps, log)

	chef := testhelpers.CreateUser(t, db.DB, "chef")
	fan := testhelpers.CreateUser(t, db.DB, "fan")
	flour := testhelpers.CreateIngredient(t, db.DB, "flour", "g")
	butter := testhelpers.CreateIngredient(t, db.DB, "butter", "g")
	chefToken, err := services.Auth.GenerateToken(chef)
	require.NoError(t, err)
	fanToken, err := services.Auth.GenerateToken(fan)
	require.NoError(t, err)

	recipe := func(name string, flourAmount float64) map[string]interface{} {
		return map[string]interface{}{
			"name":         name,
			"text":         "Bake.",
			"cooking_time": 40,
			"ingredients": []map[string]interface{}{
				{"id": flour.ID, "amount": flourAmount},
				{"id": butter.ID, "amount": 100},
			},
		}
	}

	var ids []uuid.UUID
	for i, name := range []string{"Shortbread", "Scones", "Crumble"} {
		w := send(t, r, http.MethodPost, "/api/recipes", chefToken, recipe(name, float64(100*(i+1))))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var view types.RecipeView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		ids = append(ids, view.ID)
	}

	w := send(t, r, http.MethodPost, "/api/recipes", chefToken, recipe("Fourth", 50))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Racing adds of the same pair: exactly one wins.
	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = send(t, r, http.MethodPost, "/api/recipes/"+ids[0].String()+"/shopping_cart", fanToken, nil).Code
		}(i)
	}
	wg.Wait()
	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)

	w = send(t, r, http.MethodPost, "/api/recipes/"+ids[1].String()+"/shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(t, r, http.MethodGet, "/api/recipes/download_shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Butter 200 g,\nFlour 300 g,\n", w.Body.String())

	// A failed replace leaves the stored recipe untouched.
	bad := recipe("Shortbread", 100)
	bad["ingredients"] = []map[string]interface{}{{"id": uuid.New(), "amount": 1}}
	w = send(t, r, http.MethodPut, "/api/recipes/"+ids[0].String(), chefToken, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = send(t, r, http.MethodGet, "/api/recipes/"+ids[0].String(), fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view types.RecipeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Ingredients, 2)
	assert.True(t, view.IsInShoppingCart)

	w = send(t, r, http.MethodDelete, "/api/recipes/"+ids[0].String(), chefToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = send(t, r, http.MethodGet, "/api/recipes/download_shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Butter 100 g,\nFlour 200 g,\n", w.Body.String())
}
