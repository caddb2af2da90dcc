package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a slow client may block a snapshot write.
const writeWait = 10 * time.Second

// live streams the grouped itinerary over a websocket: one message now and
// one after every change, until the client goes away.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	feed, err := h.itinerary.Watch(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to open itinerary feed", "error", err)
		closeWith(conn, websocket.CloseInternalServerErr, "itinerary unavailable")
		return
	}
	defer feed.Close()

	// The client only talks to close the connection.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case groups, ok := <-feed.Updates():
			if !ok {
				if err = feed.Err(); err != nil {
					h.log.ErrorContext(ctx, "Itinerary feed stopped", "error", err)
					closeWith(conn, websocket.CloseInternalServerErr, "itinerary unavailable")
				}
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteJSON(groups); err != nil {
				h.log.DebugContext(ctx, "Live client gone", "error", err)
				return
			}
		}
	}
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}
