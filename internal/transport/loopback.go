package transport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// LoopbackRoom is an in-process Room used by tests and local development.
// Data payloads published by the local participant are delivered on Data();
// audio frames are accepted and counted but not played anywhere.
type LoopbackRoom struct {
	name      string
	lp        *loopbackParticipant
	data      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	state      ConnectionState
	audioBytes int
}

// NewLoopbackRoom creates a connected loopback room.
func NewLoopbackRoom(name, identity string) *LoopbackRoom {
	r := &LoopbackRoom{
		name:  name,
		data:  make(chan []byte, 64),
		done:  make(chan struct{}),
		state: StateConnected,
	}
	r.lp = &loopbackParticipant{identity: identity, room: r}
	return r
}

func (r *LoopbackRoom) Name() string { return r.name }

func (r *LoopbackRoom) State() ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *LoopbackRoom) LocalParticipant() Participant {
	if r.lp == nil {
		return nil
	}
	return r.lp
}

func (r *LoopbackRoom) Done() <-chan struct{} { return r.done }

// Data delivers payloads published on the room's data channel.
func (r *LoopbackRoom) Data() <-chan []byte { return r.data }

// WriteAudio implements AudioSink.
func (r *LoopbackRoom) WriteAudio(ctx context.Context, pcm []byte) error {
	select {
	case <-r.done:
		return fmt.Errorf("room %s closed", r.name)
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.mu.Lock()
	r.audioBytes += len(pcm)
	r.mu.Unlock()
	return nil
}

// AudioBytes reports the total PCM bytes written to the room.
func (r *LoopbackRoom) AudioBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioBytes
}

func (r *LoopbackRoom) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.state = StateDisconnected
		r.mu.Unlock()
		close(r.done)
	})
	return nil
}

type loopbackParticipant struct {
	identity string
	room     *LoopbackRoom
}

func (p *loopbackParticipant) Identity() string { return p.identity }

func (p *loopbackParticipant) PublishData(ctx context.Context, payload []byte) error {
	select {
	case <-p.room.done:
		return fmt.Errorf("room %s closed", p.room.name)
	case <-ctx.Done():
		return ctx.Err()
	case p.room.data <- payload:
		return nil
	}
}

// LoopbackConnector hands out loopback rooms and remembers them so tests can
// observe the agent side of a call.
type LoopbackConnector struct {
	mu     sync.Mutex
	rooms  map[string]*LoopbackRoom
	logger *zap.Logger
}

// NewLoopbackConnector creates a loopback connector.
func NewLoopbackConnector(logger *zap.Logger) *LoopbackConnector {
	return &LoopbackConnector{
		rooms:  make(map[string]*LoopbackRoom),
		logger: logger,
	}
}

// Connect implements Connector.
func (c *LoopbackConnector) Connect(ctx context.Context, room, identity string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if room == "" {
		return nil, fmt.Errorf("room name is required")
	}
	r := NewLoopbackRoom(room, identity)
	c.mu.Lock()
	c.rooms[room] = r
	c.mu.Unlock()
	c.logger.Info("loopback room connected",
		zap.String("room", room), zap.String("identity", identity))
	return r, nil
}

// Room returns a previously connected room by name.
func (c *LoopbackConnector) Room(name string) (*LoopbackRoom, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[name]
	return r, ok
}
