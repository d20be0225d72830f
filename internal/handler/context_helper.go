package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/middleware"
	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/timeutil"
)

func authFromContext(c *gin.Context) *models.AuthContext {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		return nil
	}
	return auth
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id parameter")
	}
	return id, nil
}

// dateQuery reads an optional ?date=YYYY-MM-DD override, defaulting to now.
func dateQuery(c *gin.Context, now time.Time) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return now, nil
	}
	date, err := timeutil.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}
