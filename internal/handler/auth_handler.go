package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/models"
	"github.com/schoolops/presence-api/internal/service"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Issue a token
// @Description Authenticate by user id and password; overwrites any previous token. Accounts without a password get a bootstrap token and HTTP 202.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body object true "Login payload {id, password}"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [put]
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		ID       int64  `json:"id" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if res.MustSetPassword {
		status = http.StatusAccepted
	}
	response.JSON(c, status, res, nil)
}

// Rotate godoc
// @Summary Rotate the caller's token
// @Description Re-verify the password and replace the current token. The stored level survives.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body object true "Rotation payload {password}"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Rotate(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "password required"))
		return
	}

	res, err := h.service.Rotate(c.Request.Context(), auth.UserID, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// SetPassword godoc
// @Summary Set the caller's password
// @Description Completes the bootstrap flow; once a password exists the old one is required.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body object true "Password payload {old_password, new_password}"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/password [post]
func (h *AuthHandler) SetPassword(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "new password required"))
		return
	}

	if err := h.service.SetPassword(c.Request.Context(), auth.UserID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetLevel godoc
// @Summary Change a user's permission level
// @Description Updates the level of the user's active token. Admin only.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param payload body object true "Level payload {level}"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/level [put]
func (h *AuthHandler) SetLevel(c *gin.Context) {
	userID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		Level models.Level `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "level required"))
		return
	}

	if err := h.service.SetLevel(c.Request.Context(), userID, req.Level); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
