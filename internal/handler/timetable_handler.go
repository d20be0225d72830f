package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/service"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/response"
)

// TimetableHandler wires timetable administration and the teacher-keyed
// schedule resolver.
type TimetableHandler struct {
	timetable *service.TimetableService
	schedule  *service.ScheduleService
	now       func() time.Time
}

// NewTimetableHandler creates a new handler. nowFn may be nil for wall-clock time.
func NewTimetableHandler(timetable *service.TimetableService, schedule *service.ScheduleService, nowFn func() time.Time) *TimetableHandler {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &TimetableHandler{timetable: timetable, schedule: schedule, now: nowFn}
}

// CreateEntry godoc
// @Summary Create a recurring timetable slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateTimetableEntryRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) CreateEntry(c *gin.Context) {
	var req service.CreateTimetableEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	entry, err := h.timetable.CreateEntry(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// CreateSubstitution godoc
// @Summary Create a date-specific substitution
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateSubstitutionRequest true "Substitution payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /substitutions [post]
func (h *TimetableHandler) CreateSubstitution(c *gin.Context) {
	var req service.CreateSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid substitution payload"))
		return
	}

	sub, err := h.timetable.CreateSubstitution(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// CreatePeriod godoc
// @Summary Define a daily period slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /periods [post]
func (h *TimetableHandler) CreatePeriod(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid period payload"))
		return
	}

	period, err := h.timetable.CreatePeriod(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// ListPeriods godoc
// @Summary List period definitions
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *TimetableHandler) ListPeriods(c *gin.Context) {
	periods, err := h.timetable.ListPeriods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// TeacherSchedule godoc
// @Summary Teacher schedule
// @Description Resolved schedule of a teacher for today, or ?date=YYYY-MM-DD.
// @Tags Timetable
// @Produce json
// @Param id path int true "Teacher ID"
// @Param date query string false "Date override (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedule [get]
func (h *TimetableHandler) TeacherSchedule(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := dateQuery(c, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}

	schedule, err := h.schedule.ResolveTeacherSchedule(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
