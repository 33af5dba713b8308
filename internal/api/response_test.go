package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/apperror"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    apperror.Validation(apperror.ReasonInvalidCookingTime, "cooking_time", "cooking time must be at least 1"),
			status: http.StatusBadRequest,
			body:   `{"error":"validation_error","reason":"invalid_cooking_time","field":"cooking_time","message":"cooking time must be at least 1"}`,
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("loading: %w", apperror.NotFound("recipe", "42")),
			status: http.StatusNotFound,
			body:   `{"error":"not_found","reason":"not_found","message":"recipe not found with id 42"}`,
		},
		{
			name:   "conflict",
			err:    apperror.Conflict(apperror.ReasonSelfFollow, "cannot follow yourself"),
			status: http.StatusConflict,
			body:   `{"error":"conflict","reason":"self_follow_not_allowed","message":"cannot follow yourself"}`,
		},
		{
			name:   "forbidden",
			err:    apperror.Forbidden("only the author can change a recipe"),
			status: http.StatusForbidden,
			body:   `{"error":"permission_denied","reason":"not_owner","message":"only the author can change a recipe"}`,
		},
		{
			name:   "internal",
			err:    errors.New("pq: connection refused"),
			status: http.StatusInternalServerError,
			body:   `{"error":"internal_error","message":"An internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/recipes", nil)

			respondError(c, log, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			if tt.status == http.StatusInternalServerError {
				if assert.NotNil(t, hook.LastEntry()) {
					assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
				}
			} else {
				assert.Empty(t, hook.Entries)
			}
		})
	}
}
