package transport

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ConnectionState describes a room's link to the media server.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnected    ConnectionState = "connected"
)

// Participant is a member of a room that can publish on the data channel.
type Participant interface {
	Identity() string
	PublishData(ctx context.Context, payload []byte) error
}

// Room is the real-time media session container connecting caller and agent.
// The media plumbing itself is opaque; the orchestration layer only needs the
// data channel, the connection state, and a termination signal.
type Room interface {
	Name() string
	State() ConnectionState
	// LocalParticipant returns the agent-side participant, or nil before the
	// join completes.
	LocalParticipant() Participant
	// Done is closed when the call ends, whichever side hangs up.
	Done() <-chan struct{}
	Close() error
}

// AudioSink consumes raw PCM frames. Rooms that can play agent-side audio
// (ambient sound, synthesized speech) implement it in addition to Room.
type AudioSink interface {
	WriteAudio(ctx context.Context, pcm []byte) error
}

// Connector establishes room connections for new calls.
type Connector interface {
	Connect(ctx context.Context, room, identity string) (Room, error)
}

// NewConnector selects a connector for the configured transport URL. An empty
// URL or the loopback scheme yields the in-process room used for local
// development and tests; production deployments register an SDK-backed
// connector instead.
func NewConnector(url string, logger *zap.Logger) (Connector, error) {
	if url == "" || strings.HasPrefix(url, "loopback") {
		return NewLoopbackConnector(logger), nil
	}
	return nil, fmt.Errorf("unsupported transport url: %s", url)
}
