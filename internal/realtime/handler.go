package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"datamover/pkg/requestcontext"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// Handler upgrades /ws connections and streams hub events to them.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Register mounts the websocket endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ws", h.HandleSubscribe)
}

// HandleSubscribe upgrades the connection and forwards events until the
// client goes away or the hub shuts down.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sub, unsubscribe := h.hub.subscribe()
	h.logger.InfoContext(r.Context(), "realtime subscriber connected", "user_id", userID)

	// Reader goroutine: we ignore inbound frames but need the read loop to
	// detect the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		unsubscribe()
		conn.Close()
		h.logger.InfoContext(r.Context(), "realtime subscriber disconnected", "user_id", userID)
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-sub.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
