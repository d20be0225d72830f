package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/hub"
	"github.com/schoolops/presence-api/internal/models"
	"github.com/schoolops/presence-api/internal/service"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

// LiveHandler upgrades /live connections and runs the token handshake
// before handing the session to the hub.
type LiveHandler struct {
	hub      *hub.Hub
	auth     *service.AuthService
	presence *service.PresenceService
	upgrader websocket.Upgrader
	logger   *zap.Logger
	now      func() time.Time
}

// NewLiveHandler creates a new handler. nowFn may be nil for wall-clock time.
func NewLiveHandler(h *hub.Hub, auth *service.AuthService, presence *service.PresenceService, logger *zap.Logger, nowFn func() time.Time) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &LiveHandler{
		hub:      h,
		auth:     auth,
		presence: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser dashboards connect cross-origin; tokens gate access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		now:    nowFn,
	}
}

// Serve godoc
// @Summary Live presence channel
// @Description Websocket. The first client frame must be {"event":"token","data":"…"} with a teacher-level token; the server answers with a snapshot of the active class and pushes student events on every presence change.
// @Tags Live
// @Success 101 {string} string "Switching Protocols"
// @Router /live [get]
func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	auth, err := h.handshake(c, conn)
	if err != nil {
		h.reject(conn, err)
		return
	}

	session := h.hub.Register(auth.UserID, conn)
	h.catchUp(c, session, auth.UserID)

	// Read loop: the client sends nothing after the handshake; reading
	// drains control frames and detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.hub.Unregister(session)
}

func (h *LiveHandler) handshake(c *gin.Context, conn *websocket.Conn) (*models.AuthContext, error) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var frame hub.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		return nil, appErrors.ErrMissingCredentials
	}
	_ = conn.SetReadDeadline(time.Time{})

	if frame.Event != "token" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "first frame must carry the token")
	}
	var token string
	if err := json.Unmarshal(frame.Data, &token); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "malformed token frame")
	}

	return h.auth.Authorize(c.Request.Context(), token, models.LevelTeacher)
}

// catchUp pushes the current presence snapshot of the teacher's active
// class. Outside lesson hours there is nothing to push.
func (h *LiveHandler) catchUp(c *gin.Context, session *hub.Session, teacherID int64) {
	snapshot, err := h.presence.TeacherSnapshot(c.Request.Context(), teacherID, h.now())
	if err != nil {
		if !appErrors.Is(err, appErrors.ErrNoActivePeriod) {
			h.logger.Warn("snapshot push failed", zap.Int64("teacher_id", teacherID), zap.Error(err))
		}
		return
	}
	for _, event := range snapshot {
		frame, err := hub.NewFrame("student", event)
		if err != nil {
			continue
		}
		if err := h.hub.Send(session, frame); err != nil {
			return
		}
	}
}

func (h *LiveHandler) reject(conn *websocket.Conn, err error) {
	appErr := appErrors.FromError(err)
	if frame, ferr := hub.NewFrame("error", gin.H{"code": appErr.Code, "message": appErr.Message}); ferr == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		_ = conn.WriteJSON(frame)
	}
	_ = conn.Close()
}
