package handlers

import (
	"log"

	"github.com/etuitionbd/etuition_backend/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
)

// ServeWs keeps a dashboard connection open and registered under the user's
// email so lifecycle events reach it. Like the rest of the public surface,
// identity comes from the path, not an auth header.
func ServeWs(c *websocketcontrib.Conn) {
	email := c.Params("email")
	if email == "" {
		_ = c.WriteJSON(map[string]string{"error": "email is required"})
		c.Close()
		return
	}

	client := &websocket.Client{Email: email, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", email, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", email, err)
			}
			break
		}
	}
}
