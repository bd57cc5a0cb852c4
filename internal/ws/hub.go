package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Server-pushed and client-emitted event names.
const (
	EventOnlineUsers     = "onlineUsers"
	EventNewMessage      = "newMessage"
	EventNewNotification = "newNotification"
	EventTyping          = "typing"
)

const (
	onlineUsersKey = "linkup:online_users"
	eventsChannel  = "linkup:events"
)

// Event is the JSON envelope every WebSocket frame carries.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TypingPayload is the body of a typing event in both directions.
type TypingPayload struct {
	User     string `json:"user"`
	To       string `json:"to,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// envelope is what travels over Redis pub/sub between hub instances.
type envelope struct {
	Origin string          `json:"origin"`           // emitting hub instance
	UserID string          `json:"userId,omitempty"` // empty means broadcast
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// PresenceStore persists the online flag and lastSeen stamp of a user.
type PresenceStore interface {
	SetPresence(ctx context.Context, id primitive.ObjectID, online bool) error
}

// Hub tracks the WebSocket clients of this instance and fans events out to
// them. The Redis set is the source of truth for the online-user list; the
// pub/sub channel carries events between instances.
type Hub struct {
	id         string
	clients    map[string]map[*Client]bool // user id -> connections
	register   chan *Client
	unregister chan *Client
	redis      *redis.Client
	presence   PresenceStore
	mu         sync.RWMutex
}

// NewHub creates a hub ready to Run.
func NewHub(redisClient *redis.Client, presence PresenceStore) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redisClient,
		presence:   presence,
	}
}

// Run drives the register/unregister loop. Call it in a goroutine; it also
// starts the Redis listener for cross-instance events.
func (h *Hub) Run() {
	go h.redisListener()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	conns, known := h.clients[client.userID]
	if !known {
		conns = make(map[*Client]bool)
		h.clients[client.userID] = conns
	}
	conns[client] = true
	h.mu.Unlock()

	// first connection for this user: they just came online
	if !known {
		ctx := context.Background()
		if err := h.redis.SAdd(ctx, onlineUsersKey, client.userID).Err(); err != nil {
			log.Printf("ws: online set add failed: %v", err)
		}
		if id, err := primitive.ObjectIDFromHex(client.userID); err == nil {
			if err := h.presence.SetPresence(ctx, id, true); err != nil {
				log.Printf("ws: presence update failed: %v", err)
			}
		}
		h.broadcastOnlineUsers(ctx)
	}
	log.Printf("ws: client connected: %s", client.userID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	conns, ok := h.clients[client.userID]
	if ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.userID)
		}
	}
	last := ok && len(conns) == 0
	h.mu.Unlock()

	if !ok {
		return
	}
	close(client.send)

	if last {
		ctx := context.Background()
		if err := h.redis.SRem(ctx, onlineUsersKey, client.userID).Err(); err != nil {
			log.Printf("ws: online set remove failed: %v", err)
		}
		if id, err := primitive.ObjectIDFromHex(client.userID); err == nil {
			if err := h.presence.SetPresence(ctx, id, false); err != nil {
				log.Printf("ws: presence update failed: %v", err)
			}
		}
		h.broadcastOnlineUsers(ctx)
	}
	log.Printf("ws: client disconnected: %s", client.userID)
}

// OnlineUsers returns the ids currently in the Redis online set.
func (h *Hub) OnlineUsers(ctx context.Context) ([]string, error) {
	return h.redis.SMembers(ctx, onlineUsersKey).Result()
}

// SendToUser delivers an event to every connection of one user, on this
// instance directly and on peers via Redis.
func (h *Hub) SendToUser(userID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal %s failed: %v", event, err)
		return
	}
	h.deliverLocal(userID, event, data)
	h.publish(userID, event, data)
}

// Broadcast delivers an event to every connected client everywhere.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal %s failed: %v", event, err)
		return
	}
	h.deliverLocal("", event, data)
	h.publish("", event, data)
}

func (h *Hub) broadcastOnlineUsers(ctx context.Context) {
	users, err := h.OnlineUsers(ctx)
	if err != nil {
		log.Printf("ws: online set read failed: %v", err)
		return
	}
	h.Broadcast(EventOnlineUsers, users)
}

// deliverLocal writes a frame to this instance's matching clients. An empty
// userID matches everyone.
func (h *Hub) deliverLocal(userID, event string, data json.RawMessage) {
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if userID == "" {
		for _, conns := range h.clients {
			for client := range conns {
				client.enqueue(frame)
			}
		}
		return
	}
	for client := range h.clients[userID] {
		client.enqueue(frame)
	}
}

func (h *Hub) publish(userID, event string, data json.RawMessage) {
	payload, err := json.Marshal(envelope{Origin: h.id, UserID: userID, Event: event, Data: data})
	if err != nil {
		return
	}
	if err := h.redis.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		log.Printf("ws: redis publish failed: %v", err)
	}
}

// redisListener applies events published by peer instances to local clients.
func (h *Hub) redisListener() {
	pubsub := h.redis.Subscribe(context.Background(), eventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("ws: bad envelope on %s: %v", msg.Channel, err)
			continue
		}
		if env.Origin == h.id {
			continue // already delivered locally
		}
		h.deliverLocal(env.UserID, env.Event, env.Data)
	}
}

// relayTyping forwards a client-emitted typing change to the target user.
// Fire-and-forget, last-write-wins.
func (h *Hub) relayTyping(from string, data json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		return
	}
	h.SendToUser(p.To, EventTyping, TypingPayload{User: from, IsTyping: p.IsTyping})
}
