package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/adventure-scaler/scaler/internal/jobs"
)

// WebSocket message types for the job watch protocol
const (
	// Client -> Server messages
	MsgTypeWatch = "job:watch"
	MsgTypePing  = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeJob       = "job"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

// WSMessage is the envelope for every WebSocket message.
type WSMessage struct {
	Type      string    `json:"type"`
	JobID     string    `json:"jobId,omitempty"`
	Job       *jobs.Job `json:"job,omitempty"`
	Error     string    `json:"error,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// WebSocketHandler pushes job state to connected clients
type WebSocketHandler struct {
	manager  *jobs.Manager
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
	interval time.Duration
}

// NewWebSocketHandler creates a new WebSocket job handler
func NewWebSocketHandler(manager *jobs.Manager, log logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		log:      log,
		interval: jobPollInterval,
	}
}

// HandleWebSocket upgrades the connection and serves job:watch requests.
// A client may watch several jobs on one connection.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	conn := &wsConn{ws: ws}
	ctx, cancel := context.WithCancel(c.Request().Context())
	var watchers sync.WaitGroup
	defer func() {
		cancel()
		watchers.Wait()
	}()

	conn.send(WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.log.WithError(err).Warn("websocket connection error")
			}
			return nil
		}

		switch msg.Type {
		case MsgTypePing:
			conn.send(WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypeWatch:
			if _, ok := wsh.manager.GetJob(msg.JobID); !ok {
				conn.sendError(msg.JobID, "job not found", "NOT_FOUND")
				continue
			}
			watchers.Add(1)
			go func(id string) {
				defer watchers.Done()
				err := watchJob(ctx, wsh.manager, id, wsh.interval, func(job jobs.Job) error {
					return conn.send(WSMessage{Type: MsgTypeJob, JobID: id, Job: &job, Timestamp: time.Now().UnixMilli()})
				})
				if err != nil {
					wsh.log.WithError(err).WithField("job", id).Debug("stopped watching job")
				}
			}(msg.JobID)
		default:
			conn.sendError("", "unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}
}

// wsConn serialises writes from several watchers.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

func (c *wsConn) sendError(jobID, message, code string) error {
	return c.send(WSMessage{Type: MsgTypeError, JobID: jobID, Error: message, Code: code, Timestamp: time.Now().UnixMilli()})
}
