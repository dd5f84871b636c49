package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/relay"
)

const streamPrefix = "frontdesk:transcripts:"

// Stream mirrors published transcripts onto Redis Streams, one stream per
// room, for dashboards and call review tooling. The mirror is optional
// infrastructure; the agent runs without it.
type Stream struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewStream connects to Redis and verifies the connection.
func NewStream(redisURL string, logger *zap.Logger) (*Stream, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Stream{rdb: rdb, logger: logger}, nil
}

// Mirror appends one transcript event to the room's stream.
func (s *Stream) Mirror(ctx context.Context, room string, ev relay.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	stream := streamPrefix + room
	_, err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("mirror to %s: %w", stream, err)
	}

	s.logger.Debug("mirrored transcript",
		zap.String("room", room),
		zap.String("text", ev.Text))
	return nil
}

// Subscribe tails a room's transcript stream. Returns a channel that emits
// events. Cancel the context to stop.
func (s *Stream) Subscribe(ctx context.Context, room string) <-chan relay.Event {
	ch := make(chan relay.Event, 16)
	stream := streamPrefix + room

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := s.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   10,
				Block:   time.Second * 2,
			}).Result()

			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var ev relay.Event
					if json.Unmarshal([]byte(data), &ev) == nil {
						ch <- ev
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (s *Stream) Close() error {
	return s.rdb.Close()
}
