// Package hub maintains the registry of live teacher dashboard sessions and
// fans presence events out to them over websocket connections.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
)

// Frame is the wire envelope of every message on a live connection, in both
// directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame marshals a payload into a Frame. Marshal failures surface as an
// error so callers never push a half-built frame.
func NewFrame(event string, payload interface{}) (Frame, error) {
	if payload == nil {
		return Frame{Event: event}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}

// Metrics is the slice of instrumentation the hub reports into. A nil
// Metrics disables reporting.
type Metrics interface {
	SessionOpened()
	SessionClosed()
	PresenceEventPushed()
}

// Config tunes connection handling.
type Config struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
}

// Session is one registered websocket connection belonging to a teacher.
// Writes are serialized through the session's own mutex so fan-out and the
// ping loop never interleave frames.
type Session struct {
	teacherID int64
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closed    bool
}

// TeacherID returns the identity the session is registered under.
func (s *Session) TeacherID() int64 {
	return s.teacherID
}

// Hub is the session registry. A teacher may hold several concurrent
// sessions (two browser tabs); each receives every event.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Session]struct{}
	config   Config
	metrics  Metrics
	logger   *zap.Logger
}

// New constructs a Hub.
func New(config Config, metrics Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.PingInterval <= 0 {
		config.PingInterval = 30 * time.Second
	}
	return &Hub{
		sessions: make(map[int64]map[*Session]struct{}),
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a connection under the teacher's id and returns its session
// handle. The caller keeps ownership of the read loop; the hub starts the
// keepalive pings.
func (h *Hub) Register(teacherID int64, conn *websocket.Conn) *Session {
	if h.config.ReadLimit > 0 {
		conn.SetReadLimit(h.config.ReadLimit)
	}
	session := &Session{teacherID: teacherID, conn: conn}

	h.mu.Lock()
	if h.sessions[teacherID] == nil {
		h.sessions[teacherID] = make(map[*Session]struct{})
	}
	h.sessions[teacherID][session] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SessionOpened()
	}
	h.logger.Info("live session registered", zap.Int64("teacher_id", teacherID))

	go h.keepalive(session)
	return session
}

// Unregister drops the session and closes its connection. Safe to call more
// than once.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	set, ok := h.sessions[session.teacherID]
	if ok {
		if _, present := set[session]; present {
			delete(set, session)
			if len(set) == 0 {
				delete(h.sessions, session.teacherID)
			}
		} else {
			ok = false
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	session.writeMu.Lock()
	session.closed = true
	_ = session.conn.Close()
	session.writeMu.Unlock()

	if h.metrics != nil {
		h.metrics.SessionClosed()
	}
	h.logger.Info("live session dropped", zap.Int64("teacher_id", session.teacherID))
}

// Notify fans a presence change out to every session of the teacher. A
// failed write drops that session; the remaining sessions still receive the
// event.
func (h *Hub) Notify(teacherID int64, event models.StudentPresence) {
	frame, err := NewFrame("student", event)
	if err != nil {
		h.logger.Error("failed to encode presence event", zap.Error(err))
		return
	}

	for _, session := range h.snapshot(teacherID) {
		if err := h.Send(session, frame); err != nil {
			h.logger.Warn("live push failed, dropping session",
				zap.Int64("teacher_id", teacherID), zap.Error(err))
			h.Unregister(session)
			continue
		}
		if h.metrics != nil {
			h.metrics.PresenceEventPushed()
		}
	}
}

// Send writes one frame to the session, honoring the write timeout.
func (h *Hub) Send(session *Session, frame Frame) error {
	session.writeMu.Lock()
	defer session.writeMu.Unlock()
	if session.closed {
		return websocket.ErrCloseSent
	}
	_ = session.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	return session.conn.WriteJSON(frame)
}

// SessionCount reports how many sessions are currently registered, across
// all teachers.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, set := range h.sessions {
		count += len(set)
	}
	return count
}

// Close drops every session, for shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Session, 0)
	for _, set := range h.sessions {
		for session := range set {
			all = append(all, session)
		}
	}
	h.mu.RUnlock()

	for _, session := range all {
		h.Unregister(session)
	}
}

// snapshot copies the teacher's session set so fan-out iterates without
// holding the registry lock.
func (h *Hub) snapshot(teacherID int64) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.sessions[teacherID]
	out := make([]*Session, 0, len(set))
	for session := range set {
		out = append(out, session)
	}
	return out
}

func (h *Hub) keepalive(session *Session) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()
	for range ticker.C {
		session.writeMu.Lock()
		if session.closed {
			session.writeMu.Unlock()
			return
		}
		_ = session.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		err := session.conn.WriteMessage(websocket.PingMessage, nil)
		session.writeMu.Unlock()
		if err != nil {
			h.Unregister(session)
			return
		}
	}
}
