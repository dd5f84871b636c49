// Package session runs the lifecycle of one agent call from dial-in to
// teardown.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/agent"
	"github.com/brightline/frontdesk/internal/ambient"
	"github.com/brightline/frontdesk/internal/capability"
	"github.com/brightline/frontdesk/internal/pipeline"
	"github.com/brightline/frontdesk/internal/provider"
	"github.com/brightline/frontdesk/internal/relay"
	"github.com/brightline/frontdesk/internal/transport"
)

// State is the call lifecycle phase.
type State string

const (
	StateConnecting State = "connecting"
	StateGreeting   State = "greeting"
	StateActive     State = "active"
	StateTerminated State = "terminated"
)

// AmbientState records whether background audio is playing on the call.
type AmbientState string

const (
	AmbientEnabled  AmbientState = "enabled"
	AmbientDisabled AmbientState = "disabled"
)

// Capabilities are the media services shared by every session an agent
// process hosts.
type Capabilities struct {
	VAD   *capability.VADModel
	STT   capability.STT
	TTS   capability.TTS
	LLM   *provider.Router
	Model string
}

// Options configures an orchestrator.
type Options struct {
	Connector transport.Connector
	Caps      Capabilities
	Agent     agent.Options
	// NewAmbient builds a fresh background audio player per call. Nil
	// disables ambient audio.
	NewAmbient func() ambient.Player
	// Mirror copies transcripts to the event stream. Nil disables
	// mirroring.
	Mirror relay.Mirror
	Logger *zap.Logger
}

// Orchestrator runs one call. Connect failures abort the call; every failure
// after a successful connect degrades the call instead of ending it.
type Orchestrator struct {
	opts Options

	mu           sync.Mutex
	state        State
	ambientState AmbientState
	session      *pipeline.Session
}

// New creates an orchestrator for a single call.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:         opts,
		state:        StateConnecting,
		ambientState: AmbientDisabled,
	}
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Ambient returns whether background audio is playing.
func (o *Orchestrator) Ambient() AmbientState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ambientState
}

// Session returns the live pipeline session, or nil before the call starts.
func (o *Orchestrator) Session() *pipeline.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run drives the call until the caller hangs up or ctx is cancelled. It
// always leaves the orchestrator in StateTerminated with the room closed.
func (o *Orchestrator) Run(ctx context.Context, roomName, identity string) error {
	logger := o.opts.Logger

	o.setState(StateConnecting)
	room, err := o.opts.Connector.Connect(ctx, roomName, identity)
	if err != nil {
		o.setState(StateTerminated)
		return fmt.Errorf("connect room %s: %w", roomName, err)
	}

	a := agent.New(o.opts.Agent, logger)
	sess := pipeline.NewSession(pipeline.Config{
		VAD:   o.opts.Caps.VAD,
		STT:   o.opts.Caps.STT,
		TTS:   o.opts.Caps.TTS,
		LLM:   o.opts.Caps.LLM,
		Model: o.opts.Caps.Model,
	}, logger)

	o.mu.Lock()
	o.session = sess
	o.mu.Unlock()

	// The relay must be wired before Start so the greeting is captured.
	rel := relay.New(room, o.opts.Mirror, logger)
	if err := rel.Attach(sess); err != nil {
		rel.Close()
		room.Close()
		o.setState(StateTerminated)
		return fmt.Errorf("attach relay: %w", err)
	}

	o.setState(StateGreeting)
	if err := sess.Start(ctx, a, room); err != nil {
		rel.Close()
		room.Close()
		o.setState(StateTerminated)
		return fmt.Errorf("start session: %w", err)
	}
	o.setState(StateActive)

	var player ambient.Player = ambient.NopPlayer{}
	if o.opts.NewAmbient != nil {
		var ok bool
		player, ok = ambient.Acquire(ctx, o.opts.NewAmbient(), room, logger)
		if ok {
			o.mu.Lock()
			o.ambientState = AmbientEnabled
			o.mu.Unlock()
		}
	}

	select {
	case <-ctx.Done():
	case <-room.Done():
	}

	logger.Info("session ending", zap.String("room", room.Name()))
	player.Stop()
	rel.Close()
	if err := room.Close(); err != nil {
		logger.Warn("room close failed", zap.Error(err))
	}
	o.setState(StateTerminated)
	return nil
}
