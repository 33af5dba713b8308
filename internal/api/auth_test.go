package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	register := map[string]string{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "bon-appetit",
	}
	w := srv.do(http.MethodPost, "/api/users", "", register)
	requireStatus(t, w, http.StatusCreated)
	user := decode[types.UserView](t, w)
	assert.Equal(t, "cook", user.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = srv.do(http.MethodPost, "/api/users", "", register)
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, "duplicate_user", decode[api.ErrorBody](t, w).Reason)

	w = srv.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": "cook@example.com", "password": "wrong-password",
	})
	requireStatus(t, w, http.StatusUnauthorized)

	w = srv.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": "cook@example.com", "password": "bon-appetit",
	})
	requireStatus(t, w, http.StatusOK)
	token := decode[types.AuthToken](t, w).Token
	assert.NotEmpty(t, token)

	w = srv.do(http.MethodGet, "/api/users/me", token, nil)
	requireStatus(t, w, http.StatusOK)
	me := decode[types.UserView](t, w)
	assert.Equal(t, user.ID, me.ID)
	assert.False(t, me.IsSubscribed)

	w = srv.do(http.MethodGet, "/api/users/me", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(http.MethodPost, "/api/users", "", map[string]string{
		"email":    "not-an-email",
		"username": "cook",
		"password": "short",
	})
	requireStatus(t, w, http.StatusBadRequest)
	body := decode[api.ErrorBody](t, w)
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "invalid_field", body.Reason)
}

func TestSetPassword(t *testing.T) {
	srv := newTestServer(t)
	user := createUser(t, srv, "cook")
	token := srv.tokenFor(user)

	w := srv.do(http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "not-it", "new_password": "another-secret",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "invalid_password", decode[api.ErrorBody](t, w).Reason)

	w = srv.do(http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": testPassword, "new_password": "another-secret",
	})
	requireStatus(t, w, http.StatusNoContent)

	w = srv.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": user.Email, "password": "another-secret",
	})
	requireStatus(t, w, http.StatusOK)
}
