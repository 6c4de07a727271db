package quiz

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// HandleWebSocket handles GET /ws/sessions/{id}: it checks the session and
// upgrades the connection.
func (h *Handler) HandleWebSocket(upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := h.service.View(r.Context(), id); err != nil {
			respondServiceError(w, err, nil, h.logger)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		h.HandleConnection(conn, id)
	}
}
