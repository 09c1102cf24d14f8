package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/authz"
	"github.com/taskward-dev/taskward/internal/realtime"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/internal/utils"
	"github.com/taskward-dev/taskward/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

type WSHandler struct {
	hub            *realtime.Hub
	store          *store.Store
	allowedOrigins []string
}

func NewWSHandler(hub *realtime.Hub, s *store.Store, allowedOrigins []string) *WSHandler {
	return &WSHandler{hub: hub, store: s, allowedOrigins: allowedOrigins}
}

// clientFrame is what a connected client sends: a join-project request or a
// task event to relay to the other subscribers of that project's channel.
type clientFrame struct {
	Type    string          `json:"type"`
	Project uint            `json:"project,omitempty"`
	Task    json.RawMessage `json:"task,omitempty"`
}

// taskProjectRef extracts the embedded project reference from a relayed
// task payload.
type taskProjectRef struct {
	Project struct {
		ID uint `json:"id"`
	} `json:"project"`
}

// Serve upgrades the connection and runs the realtime session. Joining a
// project channel requires view access to that project; the hub itself does
// not check permissions.
//
// writeLoop is the only goroutine writing to the connection. Replies to
// client frames are queued on the subscriber, like hub events.
func (h *WSHandler) Serve(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(sendBuffer)

	defer func() {
		h.hub.Disconnect(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.writeLoop(conn, sub)

	sub.Send(realtime.Event{Type: "connected", Message: "Realtime connection established"})

	h.readLoop(conn, sub, user.ID)
}

// writeLoop pumps hub events to the socket and keeps the connection alive
// with pings. It exits when the subscriber is disconnected.
func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *realtime.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-sub.Events():
			if err := h.sendFrame(conn, event); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sub.Done():
			return
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, sub *realtime.Subscriber, userID uint) {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}

		switch frame.Type {
		case "join-project":
			h.handleJoin(sub, userID, frame.Project)
		case realtime.EventTaskCreated, realtime.EventTaskDeleted,
			realtime.EventTaskUpdated, realtime.EventTaskStateChanged:
			h.handleRelay(sub, frame)
		}
	}
}

func (h *WSHandler) handleJoin(sub *realtime.Subscriber, userID, projectID uint) {
	project, err := h.store.ProjectByID(projectID)

	if err == nil && !authz.CanView(userID, project) {
		err = apperr.ErrForbidden
	}

	if err != nil {
		sub.Send(realtime.Event{Type: "error", Project: projectID, Message: "Cannot join project channel"})
		return
	}

	h.hub.Join(projectID, sub)
	sub.Send(realtime.Event{Type: "joined", Project: projectID})
}

// handleRelay fans a client-emitted task event out to the other subscribers
// of the task's project channel. The sender must have joined that channel;
// events for channels it never joined are dropped.
func (h *WSHandler) handleRelay(sub *realtime.Subscriber, frame clientFrame) {
	var ref taskProjectRef
	if err := json.Unmarshal(frame.Task, &ref); err != nil || ref.Project.ID == 0 {
		return
	}

	if !h.hub.Joined(ref.Project.ID, sub) {
		return
	}

	h.hub.Publish(ref.Project.ID, sub, realtime.Event{
		Type: frame.Type,
		Task: frame.Task,
	})
}

func (h *WSHandler) sendFrame(conn *websocket.Conn, event realtime.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}
