package assistantHandler

import (
	"AsystentGolang/internal/entity"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// streamEvent is one progress update pushed to the websocket: either a
// pipeline status change or the recognized transcript.
type streamEvent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// statusHub fans pipeline progress out to the websocket subscribers of a
// user. Publishing never blocks the pipeline: a slow subscriber just loses
// the update.
type statusHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan streamEvent]struct{}
}

func newStatusHub() *statusHub {
	return &statusHub{
		subscribers: make(map[string]map[chan streamEvent]struct{}),
	}
}

func (h *statusHub) Subscribe(userID string) (chan streamEvent, func()) {
	ch := make(chan streamEvent, 16)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan streamEvent]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[userID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}

	return ch, unsubscribe
}

func (h *statusHub) Publish(userID string, event streamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// UpgradeStatusStream rejects plain HTTP requests on the websocket route.
func (h *AssistantHandler) UpgradeStatusStream(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// StatusStream pushes progress events for the authenticated user until the
// client disconnects.
func (h *AssistantHandler) StatusStream(conn *websocket.Conn) {
	defer conn.Close()

	userData, ok := conn.Locals("user").(entity.UserLoginData)
	if !ok {
		return
	}

	events, unsubscribe := h.hub.Subscribe(userData.ID)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
