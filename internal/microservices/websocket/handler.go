package websocket

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler for the availability feed. The feed is public, like
// the catalogue listing.

func newUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// WSHandler upgrades GET /ws/availability[?bookId=...] and subscribes the
// connection to the hub.
func WSHandler(hub *Hub, origins []string) gin.HandlerFunc {
	upgrader := newUpgrader(origins)
	return func(c *gin.Context) {
		bookID := c.Query("bookId")
		if bookID != "" {
			if _, err := uuid.Parse(bookID); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid bookId"})
				return
			}
		}

		// upgrade writes its own error response on failure
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Debug("feed upgrade failed", "error", err)
			return
		}

		client := NewClient(uuid.NewString(), bookID, conn, hub)
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
