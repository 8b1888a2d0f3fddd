package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/praxislab/praxis-api/internal/observability"
)

// Broadcaster is the notification port services emit through. Emit stamps
// the server timestamp and never blocks on slow subscribers.
type Broadcaster interface {
	Emit(ctx context.Context, channel Channel, event string, payload interface{})
}

// clusterEvent wraps an Event with its origin node so each node can skip
// events it published itself.
type clusterEvent struct {
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

// ClusterBroadcaster is the production Broadcaster: events reach local hub
// subscribers directly and cross-node subscribers through redis pub/sub and
// NATS.
type ClusterBroadcaster struct {
	hub         *Hub
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	natsQueue   string
	logger      zerolog.Logger
	nodeID      string
	now         func() time.Time
}

// NewBroadcaster creates the production broadcaster. Either backend may be
// nil; the hub alone still serves single-node deployments.
func NewBroadcaster(hub *Hub, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *ClusterBroadcaster {
	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":events"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &ClusterBroadcaster{
		hub:         hub,
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		natsQueue:   "praxis-events",
		logger:      logger.With().Str("component", "broadcaster").Logger(),
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

// Start launches the cross-node consumers. It returns immediately; the
// consumers stop when ctx is cancelled.
func (b *ClusterBroadcaster) Start(ctx context.Context) {
	if b.redis != nil && b.redisStream != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		b.consumeNATS(ctx)
	}
}

func (b *ClusterBroadcaster) Emit(ctx context.Context, channel Channel, event string, payload interface{}) {
	evt := Event{
		Channel:   channel,
		Event:     event,
		Payload:   payload,
		Timestamp: b.now().UTC(),
	}

	b.hub.Broadcast(channel, evt)
	observability.RealtimeEvents().WithLabelValues(event).Inc()

	if err := b.publish(ctx, evt); err != nil {
		b.logger.Warn().Err(err).Str("channel", channel.String()).Str("event", event).Msg("failed to publish realtime event")
	}
}

func (b *ClusterBroadcaster) publish(ctx context.Context, event Event) error {
	if (b.redis == nil || b.redisStream == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(clusterEvent{Source: b.nodeID, Event: event})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisStream != "" {
		if err := b.redis.Publish(ctx, b.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (b *ClusterBroadcaster) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		b.handleClusterEvent([]byte(msg.Payload))
	}
}

func (b *ClusterBroadcaster) consumeNATS(ctx context.Context) {
	sub, err := b.nats.QueueSubscribe(b.natsSubject, b.natsQueue, func(msg *nats.Msg) {
		b.handleClusterEvent(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain nats events subscription")
		}
	}()
}

func (b *ClusterBroadcaster) handleClusterEvent(data []byte) {
	var event clusterEvent
	if err := json.Unmarshal(data, &event); err != nil {
		b.logger.Warn().Err(err).Msg("invalid cluster event")
		return
	}

	if event.Source == b.nodeID {
		return
	}

	b.hub.Broadcast(event.Event.Channel, event.Event)
}

// NopBroadcaster discards every event. Used when realtime delivery is
// disabled and in tests.
type NopBroadcaster struct{}

func (NopBroadcaster) Emit(context.Context, Channel, string, interface{}) {}
