package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ErrorBody is the JSON shape of every 4xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError maps service errors to HTTP responses. Errors outside the
// apperror taxonomy are logged and hidden behind an opaque 500.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, middleware.InternalError)
		return
	}

	c.AbortWithStatusJSON(statusFor(appErr), ErrorBody{
		Error:   appErr.Kind(),
		Reason:  appErr.Reason,
		Field:   appErr.Field,
		Message: appErr.Error(),
	})
}

// bindJSON decodes the request body, replying 400 on failure.
func bindJSON(c *gin.Context, log logrus.FieldLogger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, log, apperror.Validation(apperror.ReasonInvalidField, "", "invalid request body: "+err.Error()))
		return false
	}
	return true
}

// uuidParam parses a path parameter. A malformed id cannot name an existing
// row, so it is reported as not found.
func uuidParam(c *gin.Context, log logrus.FieldLogger, name, resource string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, log, apperror.NotFound(resource, raw))
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string) (int, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, true, apperror.Validation(apperror.ReasonInvalidField, name, name+" must be a non-negative integer")
	}
	return n, true, nil
}

// pageQuery reads limit/offset, or page-based pagination when "page" is set.
func pageQuery(c *gin.Context) (types.Page, error) {
	limit, _, err := intQuery(c, "limit")
	if err != nil {
		return types.Page{}, err
	}
	offset, _, err := intQuery(c, "offset")
	if err != nil {
		return types.Page{}, err
	}
	page := types.Page{Limit: limit, Offset: offset}.Normalize()

	n, set, err := intQuery(c, "page")
	if err != nil {
		return types.Page{}, err
	}
	if set && n >= 1 {
		page.Offset = (n - 1) * page.Limit
	}
	return page, nil
}

// recipesLimitQuery reads recipes_limit; zero means unlimited.
func recipesLimitQuery(c *gin.Context) (int, error) {
	n, _, err := intQuery(c, "recipes_limit")
	return n, err
}

// flagQuery treats "1" and "true" as set.
func flagQuery(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
