package orders

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"panierbio/middleware"
	"panierbio/models"
	"panierbio/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin policy is enforced by the CORS layer in front
		return true
	},
}

// Hub fans order events out to dashboard websocket clients. Sellers
// subscribe under their own id; admin dashboards subscribe under "admin"
// and receive everything. The subscription key comes from the caller's
// token, never from a client-chosen parameter.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
	auth        *middleware.Auth
}

func NewHub(auth *middleware.Auth) *Hub {
	return &Hub{subscribers: make(map[string][]*websocket.Conn), auth: auth}
}

// subscriptionKey maps a caller to the feed they may read.
func subscriptionKey(claims *middleware.Claims) string {
	if claims.Role == models.RoleAdmin {
		return "admin"
	}
	return claims.UserID
}

// HandleWS keeps the connection open until the client disconnects.
// Browsers cannot set an Authorization header on a websocket dial, so the
// token rides in the query string.
// GET /api/order-updates?token=
func (hub *Hub) HandleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := hub.auth.ValidateJWT("Bearer " + r.URL.Query().Get("token"))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentification requise")
		return
	}
	key := subscriptionKey(claims)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	hub.mu.Lock()
	hub.subscribers[key] = append(hub.subscribers[key], conn)
	hub.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	hub.remove(key, conn)
	conn.Close()
}

// Broadcast sends the payload to every subscriber of the given sellers and
// to all admin subscribers. Dead connections are pruned as they fail.
func (hub *Hub) Broadcast(sellerIDs []string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("orders: broadcast marshal error: %v", err)
		return
	}

	keys := append([]string{"admin"}, sellerIDs...)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, key := range keys {
		alive := hub.subscribers[key][:0]
		for _, conn := range hub.subscribers[key] {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				conn.Close()
				continue
			}
			alive = append(alive, conn)
		}
		if len(hub.subscribers[key]) > 0 {
			hub.subscribers[key] = alive
		}
	}
}

func (hub *Hub) remove(key string, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	conns := hub.subscribers[key]
	next := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			next = append(next, c)
		}
	}
	hub.subscribers[key] = next
}
