package chat

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-trading-system/llm"
)

// Message is the wire format shared by clients and AI participants.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Message types.
const (
	TypeChat   = "chat"
	TypeSystem = "system"
)

// Assistant persona shown as the sender of AI replies.
const aiSender = "AI Assistant"

// Hub is the chat room. Every client message is fanned out to all clients;
// messages addressed to the assistant also produce an AI reply.
type Hub struct {
	llm *llm.Service

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
}

// NewHub creates a chat hub backed by the given LLM service.
func NewHub(svc *llm.Service) *Hub {
	return &Hub{
		llm:        svc,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
	}
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Chat client connected. Total: %d", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Chat client disconnected. Total: %d", len(h.clients))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshalling chat message: %v", err)
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Skip if client buffer is full to prevent blocking
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish posts a message into the room. System notices from the pipeline
// come through here as well.
func (h *Hub) Publish(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- msg:
	default:
		// Drop if broadcast buffer full
	}
}

// handleInbound rebroadcasts a client message and, when the assistant is
// addressed, schedules the AI reply.
func (h *Hub) handleInbound(msg Message) {
	if msg.Type == "" {
		msg.Type = TypeChat
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	h.Publish(msg)

	if wantsAssistant(msg.Text) {
		go h.replyAsAssistant(msg)
	}
}

// wantsAssistant reports whether a message addresses the AI participant.
func wantsAssistant(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "@ai") ||
		strings.Contains(lower, "assistant") ||
		strings.Contains(lower, "analyze") ||
		strings.Contains(lower, "signal")
}

func (h *Hub) replyAsAssistant(origin Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reply, err := h.llm.AssistantChat(ctx, origin.Text, map[string]string{
		"sender": origin.Sender,
		"room":   "trading",
	})
	if err != nil {
		log.Printf("⚠️  Assistant reply failed: %v", err)
		return
	}

	h.Publish(Message{
		Type:   TypeChat,
		Sender: aiSender,
		Text:   reply,
	})
}
