package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/CUknot/roomchat/metrics"
	"github.com/CUknot/roomchat/services"
)

// envelope is an event as it travels between instances.
type envelope struct {
	Audience services.Audience `json:"audience"`
	Type     string            `json:"type"`
	Payload  json.RawMessage   `json:"payload"`
}

func encodeEnvelope(evt services.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Audience: evt.Audience, Type: evt.Name, Payload: payload})
}

func decodeEnvelope(data []byte) (services.Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return services.Event{}, err
	}
	if env.Type == "" {
		return services.Event{}, fmt.Errorf("envelope without type")
	}
	return services.Event{Name: env.Type, Audience: env.Audience, Payload: env.Payload}, nil
}

// DialRedis parses a redis:// URL and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisRelay fans events out through a redis pub/sub channel so that every
// instance delivers them to its own hub.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub, log zerolog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		log:     log.With().Str("component", "relay").Str("channel", channel).Logger(),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, evt services.Event) error {
	data, err := encodeEnvelope(evt)
	if err != nil {
		return fmt.Errorf("relay: encode %s: %w", evt.Name, err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("relay: publish %s: %w", evt.Name, err)
	}
	metrics.EventsPublished.WithLabelValues(evt.Name, string(evt.Audience.Kind)).Inc()
	return nil
}

// Run subscribes to the channel and delivers every event to the local hub
// until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("relay: subscribe: %w", err)
	}
	r.log.Info().Msg("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				r.log.Warn().Err(err).Msg("dropping malformed envelope")
				continue
			}
			if err := r.hub.deliver(evt); err != nil {
				r.log.Warn().Err(err).Str("event", evt.Name).Msg("delivery failed")
			}
		}
	}
}
