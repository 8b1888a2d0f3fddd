package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

const (
	sendBufferSize    = 32
	keepaliveInterval = 30 * time.Second
)

// ConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ConnectionOptions struct {
	UserID  string
	Role    string
	Channel Channel
	Context context.Context
}

// Hub tracks active websocket clients grouped by channel and fans events
// out to them.
type Hub struct {
	mu       sync.RWMutex
	channels map[Channel]map[*client]struct{}
	log      zerolog.Logger
	now      func() time.Time
}

type client struct {
	conn    *websocket.Conn
	send    chan Event
	options ConnectionOptions
	hub     *Hub
	closed  chan struct{}
	once    sync.Once
}

// NewHub creates an empty fan-out hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		channels: make(map[Channel]map[*client]struct{}),
		log:      logger.With().Str("component", "realtime_hub").Logger(),
		now:      time.Now,
	}
}

// ServeConnection registers the connection on its channel, acknowledges the
// join, and blocks pumping messages until the peer disconnects.
func (h *Hub) ServeConnection(conn *websocket.Conn, opts ConnectionOptions) {
	if opts.Channel == "" {
		opts.Channel = GeneralChannel
	}

	c := &client{
		conn:    conn,
		send:    make(chan Event, sendBufferSize),
		options: opts,
		hub:     h,
		closed:  make(chan struct{}),
	}

	h.register(c)

	ack := Event{
		Channel:   opts.Channel,
		Event:     EventChannelJoined,
		Payload:   map[string]string{"channel": opts.Channel.String(), "user_id": opts.UserID},
		Timestamp: h.now().UTC(),
	}
	select {
	case c.send <- ack:
	default:
	}

	h.Broadcast(opts.Channel, Event{
		Channel:   opts.Channel,
		Event:     EventUserJoined,
		Payload:   map[string]string{"user_id": opts.UserID},
		Timestamp: h.now().UTC(),
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writer()
	}()
	c.reader()

	// The upgrade library tears the connection down as soon as this handler
	// returns, so the writer must be finished with it first.
	<-writerDone
}

// Broadcast delivers the event to every client on the channel. Slow
// consumers are skipped, not waited for.
func (h *Hub) Broadcast(channel Channel, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.channels[channel] {
		select {
		case c.send <- event:
		default:
			h.log.Warn().Str("channel", channel.String()).Str("user_id", c.options.UserID).Msg("dropping event for slow client")
		}
	}
}

// SubscriberCount reports how many clients are currently on the channel.
func (h *Hub) SubscriberCount(channel Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.channels[channel])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := c.options.Channel
	if _, exists := h.channels[channel]; !exists {
		h.channels[channel] = make(map[*client]struct{})
	}
	h.channels[channel][c] = struct{}{}
	h.log.Debug().Str("channel", channel.String()).Str("user_id", c.options.UserID).Msg("realtime client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := c.options.Channel
	if clients, ok := h.channels[channel]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}
	h.log.Debug().Str("channel", channel.String()).Str("user_id", c.options.UserID).Msg("realtime client disconnected")
}

// reader drains inbound frames. Clients do not publish through the socket;
// inbound frames only keep the connection alive and surface disconnects.
func (c *client) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.hub.log.Debug().Err(err).Msg("realtime read loop ended")
			return
		}
	}
}

func (c *client) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.hub.log.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(keepaliveInterval):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.hub.log.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.hub.unregister(c)
		_ = c.conn.Close()
	})
}
