package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolops/presence-api/internal/middleware"
	"github.com/schoolops/presence-api/internal/models"
	"github.com/schoolops/presence-api/internal/service"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Auth      *AuthHandler
	Me        *MeHandler
	Class     *ClassHandler
	User      *UserHandler
	Timetable *TimetableHandler
	Live      *LiveHandler
	Metrics   *MetricsHandler
}

// Register mounts the API routes under the given prefix.
func Register(r *gin.Engine, prefix string, authSvc *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	student := middleware.RequireLevel(authSvc, models.LevelStudent)
	teacher := middleware.RequireLevel(authSvc, models.LevelTeacher)
	admin := middleware.RequireLevel(authSvc, models.LevelAdmin)
	bootstrap := middleware.RequireLevelBootstrap(authSvc, models.LevelStudent)

	api.PUT("/login", h.Auth.Login)
	api.POST("/login", bootstrap, h.Auth.Rotate)
	api.POST("/me/password", bootstrap, h.Auth.SetPassword)

	api.GET("/me/schedule/", student, h.Me.Schedule)
	api.GET("/me/schedule/current_subject/", student, h.Me.CurrentSubject)
	api.GET("/me/is_present", student, h.Me.IsPresent)
	api.POST("/me/present", student, h.Me.SetPresence)

	api.GET("/classes/:id/presence", teacher, h.Class.Presence)
	api.GET("/classes/:id/schedule", teacher, h.Class.Schedule)
	api.GET("/classes/:id/attendance/report", teacher, h.Class.AttendanceReport)
	api.GET("/teachers/:id/schedule", teacher, h.Timetable.TeacherSchedule)

	api.POST("/users", admin, h.User.Create)
	api.GET("/users", admin, h.User.List)
	api.GET("/users/:id", admin, h.User.Get)
	api.PUT("/users/:id/level", admin, h.Auth.SetLevel)
	api.POST("/classes", admin, h.Class.Create)
	api.GET("/classes", admin, h.Class.List)
	api.GET("/classes/:id", teacher, h.Class.Get)
	api.PUT("/students/:id/class", admin, h.Class.Enroll)
	api.POST("/timetable", admin, h.Timetable.CreateEntry)
	api.POST("/substitutions", admin, h.Timetable.CreateSubstitution)
	api.GET("/periods", teacher, h.Timetable.ListPeriods)
	api.POST("/periods", admin, h.Timetable.CreatePeriod)

	if h.Live != nil {
		api.GET("/live", h.Live.Serve)
	}
}
