package notifications

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"jobboard/internal/middleware"
	"jobboard/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerAccount = 5
	maxTotalConns      = 10000
)

var (
	ErrAccountConnLimit = errors.New("too many open notification sockets for this account")
	ErrServerConnLimit  = errors.New("notification socket limit reached")
	ErrHubClosed        = errors.New("notification hub is shut down")
)

// Hub fans account channel events out to that account's open websockets.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for accountID. conn may be nil in tests.
func (h *Hub) Register(accountID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[accountID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[accountID] = m
	}
	if len(m) >= maxConnsPerAccount {
		return nil, ErrAccountConnLimit
	}

	client := newClient(h, conn, accountID)
	m[client] = struct{}{}
	h.total++
	observability.ActiveNotificationSockets.Inc()
	return client, nil
}

// Unregister removes client and closes its Send channel. It is safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	m, ok := h.conns[client.AccountID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.AccountID)
	}
	h.total--
	observability.ActiveNotificationSockets.Dec()
	close(client.Send)
}

// Broadcast queues payload on every socket of accountID and reports how many
// accepted it.
func (h *Hub) Broadcast(accountID uint, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.conns[accountID] {
		if c.trySend(payload) {
			delivered++
		}
	}
	return delivered
}

// Connections returns the number of open sockets of accountID.
func (h *Hub) Connections(accountID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[accountID])
}

// StartWiring subscribes to every account channel and forwards each event to
// the sockets of the account it names.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartAccountSubscriber(ctx, func(channel, payload string) {
		accountID, ok := accountFromChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(accountID, []byte(payload))
	})
}

func accountFromChannel(channel string) (uint, bool) {
	rest, ok := strings.CutPrefix(channel, "notifications:account:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Shutdown closes every client's Send channel; their write pumps then send a
// going-away close frame. Later registrations are refused.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, m := range h.conns {
		for c := range m {
			h.removeLocked(c)
		}
	}
	return nil
}
