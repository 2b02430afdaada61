// order_web_socket.go
package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sunny-kumar-mit/ShopKart-Backend/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMu guards the client registry and serializes writes: broadcasts fire from
// every handler that mutates an order, and gorilla/websocket allows at most
// one concurrent writer per connection.
var wsMu sync.Mutex
var wsClients = make(map[*websocket.Conn]bool)

// OrderWebSocketHandler upgrades the connection and holds it open; every
// order status change is pushed to all connected clients.
func OrderWebSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wsMu.Lock()
	wsClients[conn] = true
	wsMu.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			wsMu.Lock()
			delete(wsClients, conn)
			wsMu.Unlock()
			break
		}
	}
}

// BroadcastOrderUpdate pushes the order document to every connected client.
// Also called by the payment verifier when a paid order is created.
func BroadcastOrderUpdate(order models.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		return
	}
	wsMu.Lock()
	defer wsMu.Unlock()
	for client := range wsClients {
		client.WriteMessage(websocket.TextMessage, data)
	}
}
