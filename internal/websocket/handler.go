package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one connection until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, studentID int64) {
	client := NewClient(hub, c, studentID)
	if !hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
