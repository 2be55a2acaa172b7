package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/events"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is handled by the CORS middleware
	},
}

const writeTimeout = 10 * time.Second

// Handler streams unit lifecycle events to WebSocket subscribers.
type Handler struct {
	bus *events.Bus
	log *logging.Logger
}

// NewHandler creates a WebSocket event stream handler.
func NewHandler(bus *events.Bus, log *logging.Logger) *Handler {
	return &Handler{
		bus: bus,
		log: log,
	}
}

// HandleConnection upgrades the request and relays bus events until the
// client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	// Drain client frames so pings and close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	welcome := map[string]any{"type": "connected", "time": time.Now()}
	if err := h.write(conn, welcome); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := h.write(conn, ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
