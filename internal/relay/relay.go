package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/pipeline"
	"github.com/brightline/frontdesk/internal/transport"
)

const (
	queueSize      = 64
	publishTimeout = 5 * time.Second
)

// Event is the transcript payload published on the room data channel.
type Event struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Mirror receives a copy of every published transcript. The event stream
// mirror is optional; a nil Mirror disables it.
type Mirror interface {
	Mirror(ctx context.Context, room string, ev Event) error
}

// Relay forwards agent speech to room subscribers as transcription events.
// Events from all capture points funnel through one queue and one dispatch
// goroutine, so publish order matches capture order. Delivery is best
// effort: a failed or dropped event is logged and never disturbs the
// conversation.
type Relay struct {
	room   transport.Room
	mirror Mirror
	logger *zap.Logger

	queue     chan Event
	stop      chan struct{}
	closeOnce sync.Once
	done      sync.WaitGroup
}

// New creates a relay for the given room and starts its dispatch loop.
// mirror may be nil.
func New(room transport.Room, mirror Mirror, logger *zap.Logger) *Relay {
	r := &Relay{
		room:   room,
		mirror: mirror,
		logger: logger,
		queue:  make(chan Event, queueSize),
		stop:   make(chan struct{}),
	}
	r.done.Add(1)
	go r.dispatch()
	return r
}

// Attach subscribes the relay to both capture points of a session: text
// entering speech synthesis and completed replies. Must be called before the
// session starts.
func (r *Relay) Attach(s *pipeline.Session) error {
	if err := s.OnSynthesis(func(text string) {
		r.EnqueueText(text)
	}); err != nil {
		return err
	}
	return s.OnReply(func(reply *pipeline.Reply) {
		r.Enqueue(reply)
	})
}

// Enqueue extracts transcript text from a turn result and queues it for
// publishing. Results carrying no text are skipped with a diagnostic log.
func (r *Relay) Enqueue(result interface{}) {
	text, ok := extractText(result)
	if !ok {
		r.logger.Warn("no text found in result to publish as transcription")
		return
	}
	r.EnqueueText(text)
}

// EnqueueText queues one transcript line. Empty text is ignored; when the
// queue is full the event is dropped rather than blocking the conversation.
func (r *Relay) EnqueueText(text string) {
	if text == "" {
		return
	}
	ev := Event{
		Type:      "transcription",
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	select {
	case r.queue <- ev:
	case <-r.stop:
	default:
		r.logger.Warn("transcription queue full, dropping event", zap.String("text", text))
	}
}

// Close stops the dispatch loop after draining queued events.
func (r *Relay) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
	})
	r.done.Wait()
}

func (r *Relay) dispatch() {
	defer r.done.Done()
	for {
		select {
		case ev := <-r.queue:
			r.publish(ev)
		case <-r.stop:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case ev := <-r.queue:
					r.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (r *Relay) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("marshal transcription event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	r.logger.Info("sending transcription data",
		zap.String("text", ev.Text),
		zap.String("room", r.room.Name()))

	lp := r.room.LocalParticipant()
	if lp == nil {
		r.logger.Error("failed to send transcription data",
			zap.String("room_state", string(r.room.State())),
			zap.Bool("local_participant_exists", false))
		return
	}
	if err := lp.PublishData(ctx, payload); err != nil {
		r.logger.Error("failed to send transcription data",
			zap.Error(err),
			zap.String("room_state", string(r.room.State())),
			zap.Bool("local_participant_exists", true))
		return
	}
	r.logger.Info("successfully sent transcription", zap.String("text", ev.Text))

	if r.mirror != nil {
		if err := r.mirror.Mirror(ctx, r.room.Name(), ev); err != nil {
			r.logger.Warn("transcript mirror failed", zap.Error(err))
		}
	}
}

// extractText pulls transcript text from a turn result. Replies are checked
// for Text first, then plain strings, then the reply Content field.
func extractText(result interface{}) (string, bool) {
	switch v := result.(type) {
	case *pipeline.Reply:
		if v == nil {
			return "", false
		}
		if v.Text != "" {
			return v.Text, true
		}
		if v.Content != "" {
			return v.Content, true
		}
		return "", false
	case string:
		if v != "" {
			return v, true
		}
		return "", false
	default:
		return "", false
	}
}
