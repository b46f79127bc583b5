package livewire

import (
	"net/http"
	"sync"

	"labhive/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleWS subscribes a client to live status updates for one booking
// request. The requester's app holds this open while a dispatch runs.
// Browsers cannot set an Authorization header on a websocket handshake,
// so the JWT arrives as a ?token= query parameter instead.
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")

	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	if _, err := middleware.ValidateJWT(token); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[requestID] = append(subscribers[requestID], conn)
	mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[requestID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[requestID] = newList
	mu.Unlock()

	conn.Close()
}

// Broadcast pushes a payload to every client watching the request.
// Dead connections are dropped on write failure.
func Broadcast(requestID string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[requestID]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[requestID] = newList
}
