// websocket/hub.go
package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ali-alhashim/next-it/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type eventHub struct {
	mutex   sync.Mutex
	clients map[*client]bool
}

var hub = &eventHub{clients: make(map[*client]bool)}

// ServeEvents upgrades the connection and streams device events until the
// client goes away. Auth middleware lets websocket upgrades through, so the
// token is checked here from the query string.
func ServeEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := utils.ValidateJWT(token)
	if err != nil || claims == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	hub.mutex.Lock()
	hub.clients[c] = true
	hub.mutex.Unlock()

	log.Printf("websocket client connected: %s", claims.BadgeNumber)

	go c.writeLoop()
	c.readLoop()
}

func (c *client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

// readLoop drains the connection so pings and close frames are processed; no
// client-to-server messages are expected.
func (c *client) readLoop() {
	defer func() {
		hub.mutex.Lock()
		if _, ok := hub.clients[c]; ok {
			delete(hub.clients, c)
			close(c.send)
		}
		hub.mutex.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
