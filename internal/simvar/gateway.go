package simvar

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // in-sim plugin connects from localhost
	},
}

// VarUpdate is one variable write on the gateway socket, in either direction.
type VarUpdate struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Gateway exposes a Store to the in-sim plugin over a WebSocket. Inbound
// messages from the plugin write variables into the backing store; variable
// writes made through the Gateway's own Set are pushed out to connected
// plugins. The Gateway implements Store, so the cycle driver uses it
// directly in place of the backing MemStore.
type Gateway struct {
	store *MemStore

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex
}

// NewGateway wraps a backing store.
func NewGateway(store *MemStore) *Gateway {
	return &Gateway{
		store: store,
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Get reads from the backing store.
func (g *Gateway) Get(name string) float64 {
	return g.store.Get(name)
}

// Set writes to the backing store and pushes the update to every connected
// plugin. Push failures drop the connection; the plugin reconnects.
func (g *Gateway) Set(name string, value float64) {
	g.store.Set(name, value)
	g.push(VarUpdate{Name: name, Value: value})
}

// Handler returns the HTTP handler that upgrades plugin connections.
func (g *Gateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Warning: gateway upgrade failed: %v", err)
			return
		}
		g.addConn(conn)
		go g.readLoop(conn)
	})
}

func (g *Gateway) addConn(conn *websocket.Conn) {
	g.mu.Lock()
	g.conns[conn] = &sync.Mutex{}
	g.mu.Unlock()
}

func (g *Gateway) dropConn(conn *websocket.Conn) {
	g.mu.Lock()
	delete(g.conns, conn)
	g.mu.Unlock()
	conn.Close()
}

func (g *Gateway) readLoop(conn *websocket.Conn) {
	defer g.dropConn(conn)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var update VarUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			log.Printf("Warning: gateway received bad message: %v", err)
			continue
		}
		if update.Name == "" {
			continue
		}
		g.store.Set(update.Name, update.Value)
	}
}

func (g *Gateway) push(update VarUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		return
	}

	g.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(g.conns))
	for conn, mu := range g.conns {
		conns[conn] = mu
	}
	g.mu.Unlock()

	for conn, mu := range conns {
		mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			g.dropConn(conn)
		}
	}
}

// Close drops all plugin connections.
func (g *Gateway) Close() {
	g.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(g.conns))
	for conn := range g.conns {
		conns = append(conns, conn)
	}
	g.conns = make(map[*websocket.Conn]*sync.Mutex)
	g.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
