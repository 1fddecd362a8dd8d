package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"breeze-chat/internal/redis"
	"breeze-chat/internal/router"
	"breeze-chat/internal/services"
	"breeze-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const readWait = 60 * time.Second

// Frame is one decoded inbound request on the connection.
type Frame struct {
	ID     string            `json:"id,omitempty"`
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// ResponseFrame pairs a response envelope with the frame id it answers.
type ResponseFrame struct {
	ID     string `json:"id,omitempty"`
	Status int    `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// Handler upgrades connections and pumps frames through the dispatcher.
// Frames on one connection are handled sequentially; independent connections
// run concurrently.
type Handler struct {
	auth       *services.AuthService
	hub        *Hub
	dispatcher *router.Dispatcher
	limiter    *redis.RateLimiter
	presence   *redis.PresenceStore
	log        *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, dispatcher *router.Dispatcher, limiter *redis.RateLimiter, presence *redis.PresenceStore, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		auth:       auth,
		hub:        hub,
		dispatcher: dispatcher,
		limiter:    limiter,
		presence:   presence,
		log:        log,
	}
}

// Connect handles GET /ws. A valid token query parameter authenticates the
// connection up front; without one the connection stays anonymous and each
// frame may carry its own token.
func (h *Handler) Connect(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn)
	if token := c.Query("token"); token != "" {
		if id, err := h.auth.ParseToken(token); err == nil {
			client.SetUser(id.String())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	if uid := client.User(); uid != "" {
		if err := h.presence.SetOnline(ctx, uid); err != nil {
			h.log.Warnf("presence online for %s: %v", uid, err)
		}
	}

	h.readLoop(ctx, client)

	if uid := client.User(); uid != "" {
		if err := h.presence.SetOffline(context.Background(), uid); err != nil {
			h.log.Warnf("presence offline for %s: %v", uid, err)
		}
	}
	h.hub.Unregister(client)
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Path == "" {
			h.reply(client, "", router.Envelope{Status: 400, Data: "malformed request frame"})
			continue
		}

		allowed, err := h.limiter.AllowFrame(ctx, client.ID)
		if err != nil {
			h.log.Warnf("rate limit check for %s: %v", client.ID, err)
			allowed = true
		}
		if !allowed {
			h.reply(client, frame.ID, router.Envelope{Status: 429, Data: "rate limited"})
			continue
		}

		h.dispatch(ctx, client, frame)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, frame Frame) {
	req := router.Request{
		Method: router.Method(frame.Method),
		Path:   frame.Path,
		Params: frame.Params,
		UserID: client.User(),
	}
	h.dispatcher.Dispatch(ctx, req, func(env router.Envelope) error {
		h.reply(client, frame.ID, env)
		return nil
	})
}

func (h *Handler) reply(client *Client, frameID string, env router.Envelope) {
	out, err := json.Marshal(ResponseFrame{ID: frameID, Status: env.Status, Data: env.Data})
	if err != nil {
		h.log.Errorf("marshal response frame: %v", err)
		return
	}
	select {
	case client.Send <- out:
	default:
		h.log.Warnf("send buffer full, dropping response for client %s", client.ID)
	}
}
