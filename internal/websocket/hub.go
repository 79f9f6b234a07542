package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-study-assist-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "study_cluster_events"

// Envelope is the frame pushed to browsers.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterMessage struct {
	Origin          string          `json:"origin"`
	TargetStudentID int64           `json:"target_student_id"`
	Broadcast       bool            `json:"broadcast"`
	Message         json.RawMessage `json:"message"`
}

type Hub struct {
	// StudentID -> connections (one per tab or device)
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis fans frames out to other instances. nil means single instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves register and unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.StudentID] = append(h.clients[client.StudentID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"student_id": client.StudentID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds a connection. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.StudentID]
	for i, c := range clients {
		if c != client {
			continue
		}
		h.clients[client.StudentID] = append(clients[:i], clients[i+1:]...)
		close(client.Send)
		break
	}
	if len(h.clients[client.StudentID]) == 0 {
		delete(h.clients, client.StudentID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"student_id": client.StudentID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// ClientCount is the number of local connections for studentID.
func (h *Hub) ClientCount(studentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[studentID])
}

// Send pushes a frame to every connection of studentID, here and on other
// instances.
func (h *Hub) Send(studentID int64, eventType string, data interface{}) {
	frame, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}
	h.deliver(studentID, false, frame)
	h.publish(clusterMessage{TargetStudentID: studentID, Message: frame})
}

// Broadcast pushes a frame to every connected student.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	frame, err := json.Marshal(Envelope{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}
	h.deliver(0, true, frame)
	h.publish(clusterMessage{Broadcast: true, Message: frame})
}

// deliver never blocks. Connections with a full buffer are dropped.
func (h *Hub) deliver(studentID int64, all bool, frame []byte) {
	var slow []*Client

	h.mu.RLock()
	for id, clients := range h.clients {
		if !all && id != studentID {
			continue
		}
		for _, client := range clients {
			select {
			case client.Send <- frame:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"student_id": client.StudentID})
		go h.Unregister(client)
	}
}

func (h *Hub) publish(msg clusterMessage) {
	if h.rdb == nil {
		return
	}
	msg.Origin = h.instanceID
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// subscribeToRedis delivers frames published by other instances. Every
// instance subscribes to one channel and filters by local connections.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliver(payload.TargetStudentID, payload.Broadcast, payload.Message)
		}
	}
}
