package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

type Client struct {
	Email string
	Conn  *websocket.Conn
}

// ApplicationEvent is pushed to the student and tutor dashboards whenever an
// application changes state (submitted, approved, rejected, paid).
type ApplicationEvent struct {
	Type          string   `json:"type"`
	ApplicationID string   `json:"applicationId"`
	TuitionID     string   `json:"tuitionId"`
	Status        string   `json:"status"`
	Recipients    []string `json:"-"`
}

var clients = make(map[string]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *ApplicationEvent)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Dashboard client registered: %s", client.Email)
			clientsMu.Lock()
			clients[client.Email] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Dashboard client unregistered: %s", client.Email)
			clientsMu.Lock()
			if conn, ok := clients[client.Email]; ok && conn == client.Conn {
				delete(clients, client.Email)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			for _, email := range event.Recipients {
				if conn, ok := clients[email]; ok {
					if err := conn.WriteJSON(event); err != nil {
						log.Printf("Error sending event to client %s: %v", email, err)
						conn.Close()
						clientsMu.RUnlock()
						clientsMu.Lock()
						delete(clients, email)
						clientsMu.Unlock()
						clientsMu.RLock()
					}
				}
			}
			clientsMu.RUnlock()
		}
	}
}

// Notify hands an event to the hub without blocking the caller when the hub
// is not running (tests).
func Notify(event *ApplicationEvent) {
	select {
	case Broadcast <- event:
	default:
	}
}
