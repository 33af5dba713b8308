package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	services *service.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := testhelpers.SetupSQLiteDB(t)
	log := logging.Discard()
	mediaDir := t.TempDir()

	cfg := &config.Config{Environment: config.Test, MediaDir: mediaDir}
	services := service.NewServices(database.DB, service.NewLocalImageStore(mediaDir, "/media"), "test-secret", time.Hour, log)

	return &testServer{
		t:        t,
		db:       database.DB,
		router:   router.SetupRouter(cfg, database, api.DependenciesFor(services), log),
		services: services,
	}
}

// tokenFor issues a token for a fixture user.
func (s *testServer) tokenFor(user *models.User) string {
	s.t.Helper()
	token, err := s.services.Auth.GenerateToken(user)
	require.NoError(s.t, err)
	return token
}

// do sends a request; body is JSON-encoded unless nil.
func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}


const testPassword = testhelpers.TestPassword

func createUser(t *testing.T, s *testServer, username string) *models.User {
	return testhelpers.CreateUser(t, s.db, username)
}
