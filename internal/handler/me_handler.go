package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/models"
	"github.com/schoolops/presence-api/internal/service"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/response"
)

// MeHandler serves the student self-service routes: the caller's schedule
// and presence state.
type MeHandler struct {
	presence *service.PresenceService
	now      func() time.Time
}

// NewMeHandler creates a new handler. nowFn may be nil for wall-clock time.
func NewMeHandler(presence *service.PresenceService, nowFn func() time.Time) *MeHandler {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &MeHandler{presence: presence, now: nowFn}
}

// Schedule godoc
// @Summary Caller's schedule
// @Description Resolved schedule of the caller's class for today, or ?date=YYYY-MM-DD.
// @Tags Me
// @Produce json
// @Param date query string false "Date override (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/schedule/ [get]
func (h *MeHandler) Schedule(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}
	date, err := dateQuery(c, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	schedule, err := h.presence.StudentSchedule(c.Request.Context(), auth.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// CurrentSubject godoc
// @Summary Caller's current subject
// @Description The schedule entry covering the current time, or 404 outside lesson hours.
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/schedule/current_subject/ [get]
func (h *MeHandler) CurrentSubject(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}

	entry, err := h.presence.StudentCurrentSubject(c.Request.Context(), auth.UserID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// IsPresent godoc
// @Summary Caller's presence state
// @Description Whether the caller is recorded present for the active period right now.
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/is_present [get]
func (h *MeHandler) IsPresent(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}

	status, err := h.presence.IsPresent(c.Request.Context(), auth.UserID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// SetPresence godoc
// @Summary Record a presence action
// @Description Applies set_present_from, set_present_until or set_absent for the caller's active period.
// @Tags Me
// @Accept json
// @Produce json
// @Param room_id query int true "Room the action happens in"
// @Param payload body object true "Action payload {action}"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/present [post]
func (h *MeHandler) SetPresence(c *gin.Context) {
	auth := authFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrMissingCredentials)
		return
	}

	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "room_id query parameter required"))
		return
	}

	var req struct {
		Action models.PresenceAction `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "action required"))
		return
	}

	record, err := h.presence.SetPresence(c.Request.Context(), auth.UserID, req.Action, roomID, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
