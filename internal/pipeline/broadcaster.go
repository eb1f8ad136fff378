package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broadcaster streams snapshots to WebSocket clients. New clients receive
// the latest snapshot right away.
type Broadcaster struct {
	ch  <-chan *domain.Snapshot
	log *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte
}

func NewBroadcaster(ch <-chan *domain.Snapshot, lg *log.Logger) *Broadcaster {
	return &Broadcaster{
		ch:      ch,
		log:     lg,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (b *Broadcaster) Run(ctx context.Context) {
	defer b.closeAll()
	for {
		select {
		case msg, ok := <-b.ch:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			b.broadcast(data)

		case <-ctx.Done():
			return
		}
	}
}

func (b *Broadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("ws upgrade failed", slog.Any("err", err))
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	last := b.last
	if last != nil {
		if err := conn.WriteMessage(websocket.TextMessage, last); err != nil {
			delete(b.clients, conn)
			conn.Close()
			b.mu.Unlock()
			return
		}
	}
	b.mu.Unlock()

	go b.readPump(conn)
}

func (b *Broadcaster) broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = data
	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			delete(b.clients, c)
		}
	}
}

func (b *Broadcaster) remove(c *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, c)
	b.mu.Unlock()
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		c.Close()
		delete(b.clients, c)
	}
}

// readPump drains control frames and notices when the client goes away.
func (b *Broadcaster) readPump(c *websocket.Conn) {
	defer func() {
		b.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
