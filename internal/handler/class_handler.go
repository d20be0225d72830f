package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/service"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
	"github.com/schoolops/presence-api/pkg/export"
	"github.com/schoolops/presence-api/pkg/response"
	"github.com/schoolops/presence-api/pkg/storage"
	"github.com/schoolops/presence-api/pkg/timeutil"
)

// ClassHandler wires class management, the teacher presence views and the
// attendance report export.
type ClassHandler struct {
	classes  *service.ClassService
	presence *service.PresenceService
	schedule *service.ScheduleService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	archive  *storage.Archive
	logger   *zap.Logger
	now      func() time.Time
}

// NewClassHandler creates a new handler. archive may be nil to skip report
// archiving; nowFn may be nil for wall-clock time.
func NewClassHandler(classes *service.ClassService, presence *service.PresenceService, schedule *service.ScheduleService, archive *storage.Archive, logger *zap.Logger, nowFn func() time.Time) *ClassHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &ClassHandler{
		classes:  classes,
		presence: presence,
		schedule: schedule,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		archive:  archive,
		logger:   logger,
		now:      nowFn,
	}
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Get godoc
// @Summary Get a class
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	class, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Enroll godoc
// @Summary Enroll a student
// @Description Assigns the student to the class, moving them when enrolled elsewhere.
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body object true "Enrollment payload {class_id}"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/class [put]
func (h *ClassHandler) Enroll(c *gin.Context) {
	studentID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req struct {
		ClassID int64 `json:"class_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "class_id required"))
		return
	}

	enrollment, err := h.classes.Enroll(c.Request.Context(), studentID, req.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Presence godoc
// @Summary Class presence snapshot
// @Description Presence state of every roster student for the class's active period.
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/presence [get]
func (h *ClassHandler) Presence(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.presence.ClassSnapshot(c.Request.Context(), id, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Schedule godoc
// @Summary Class schedule
// @Description Resolved schedule for today, or ?date=YYYY-MM-DD.
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Param date query string false "Date override (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule [get]
func (h *ClassHandler) Schedule(c *gin.Context) {
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

	schedule, err := h.schedule.ResolveClassSchedule(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// AttendanceReport godoc
// @Summary Export a class attendance report
// @Description Per-student presence windows for one date, as CSV or PDF.
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Class ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /classes/{id}/attendance/report [get]
func (h *ClassHandler) AttendanceReport(c *gin.Context) {
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

	dataset, err := h.presence.DailyReport(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	day := timeutil.DateOf(date).Format("2006-01-02")
	format := c.DefaultQuery("format", "csv")

	var payload []byte
	var contentType string
	switch format {
	case "csv":
		payload, err = h.csv.Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = h.pdf.Render(dataset, fmt.Sprintf("Attendance %s", day))
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.archive != nil {
		if _, err := h.archive.Store(id, date, format, payload); err != nil {
			h.logger.Warn("report archive write failed", zap.Int64("class_id", id), zap.Error(err))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%d-%s.%s", id, day, format))
	c.Data(http.StatusOK, contentType, payload)
}
