package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/agent"
	"github.com/brightline/frontdesk/internal/capability"
	"github.com/brightline/frontdesk/internal/provider"
	"github.com/brightline/frontdesk/internal/transport"
)

// Reply is the result of one agent turn.
type Reply struct {
	ID      string
	Text    string
	Content string
	Usage   provider.Usage
}

// ReplyObserver receives every completed reply.
type ReplyObserver func(reply *Reply)

// SynthesisHook receives the text of every utterance sent to TTS.
type SynthesisHook func(text string)

// Config assembles the media capabilities for a session.
type Config struct {
	VAD   *capability.VADModel
	STT   capability.STT
	TTS   capability.TTS
	LLM   *provider.Router
	Model string
}

// Session drives one caller conversation: audio in through VAD and STT, the
// LLM tool loop in the middle, TTS audio out. Observers must be registered
// before Start; registration after the session is live is an error so that no
// reply can slip past a late subscriber.
type Session struct {
	cfg    Config
	logger *zap.Logger

	room  transport.Room
	agent *agent.Agent

	mu         sync.Mutex
	history    []provider.Message
	replyObs   []ReplyObserver
	synthHooks []SynthesisHook
	started    bool
}

// NewSession creates a session from the given capabilities.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Room returns the room the session is attached to, or nil before Start.
func (s *Session) Room() transport.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// OnReply registers an observer for completed replies.
func (s *Session) OnReply(fn ReplyObserver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("session already started")
	}
	s.replyObs = append(s.replyObs, fn)
	return nil
}

// OnSynthesis registers a hook for text sent to speech synthesis.
func (s *Session) OnSynthesis(fn SynthesisHook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("session already started")
	}
	s.synthHooks = append(s.synthHooks, fn)
	return nil
}

// Start attaches the agent to the room and produces the opening greeting.
// The greeting flows through the same reply path as every later turn, so
// observers registered before Start see it.
func (s *Session) Start(ctx context.Context, a *agent.Agent, room transport.Room) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.started = true
	s.room = room
	s.agent = a
	s.history = []provider.Message{{
		Role:    "system",
		Content: a.Persona().Instructions,
	}}
	s.mu.Unlock()

	s.logger.Info("session started",
		zap.String("room", room.Name()),
		zap.String("persona", a.Persona().Name))

	if _, err := s.GenerateReply(ctx, a.GreetingInstructions()); err != nil {
		return fmt.Errorf("generate greeting: %w", err)
	}
	return nil
}

// HandleAudio processes one caller audio frame. Frames without detected
// speech are dropped; speech is transcribed and answered.
func (s *Session) HandleAudio(ctx context.Context, pcm []byte) (*Reply, error) {
	if s.cfg.VAD != nil && !s.cfg.VAD.Detect(pcm) {
		return nil, nil
	}
	text, err := s.cfg.STT.Recognize(ctx, pcm)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return s.HandleText(ctx, text)
}

// HandleText answers one caller utterance.
func (s *Session) HandleText(ctx context.Context, text string) (*Reply, error) {
	s.mu.Lock()
	s.history = append(s.history, provider.Message{Role: "user", Content: text})
	s.mu.Unlock()
	return s.GenerateReply(ctx, "")
}

// GenerateReply runs one agent turn: the LLM call with up to five tool
// rounds, then speech synthesis and observer delivery. instructions, when
// non-empty, steers the turn without entering the durable history.
func (s *Session) GenerateReply(ctx context.Context, instructions string) (*Reply, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil, fmt.Errorf("session not started")
	}
	a := s.agent
	messages := make([]provider.Message, len(s.history))
	copy(messages, s.history)
	s.mu.Unlock()

	if instructions != "" {
		messages = append(messages, provider.Message{Role: "user", Content: instructions})
	}

	req := &provider.ChatRequest{
		Model:     s.cfg.Model,
		Messages:  messages,
		MaxTokens: 4096,
	}
	if defs := a.Dispatcher().Definitions(); len(defs) > 0 {
		req.Tools = defs
		req.ToolChoice = "auto"
	}

	const maxToolRounds = 5
	var resp *provider.ChatResponse
	for round := 0; round < maxToolRounds; round++ {
		var routeErr error
		resp, routeErr = s.cfg.LLM.Route(ctx, req)
		if routeErr != nil {
			return nil, routeErr
		}

		if len(resp.ToolCalls) == 0 || resp.FinishReason != "tool_calls" {
			break
		}

		req.Messages = append(req.Messages, provider.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result, toolErr := a.Dispatcher().Execute(ctx, tc.Function.Name, tc.Function.Arguments)
			if toolErr != nil {
				if ctx.Err() != nil {
					return nil, toolErr
				}
				result = fmt.Sprintf(`{"error":"%s"}`, toolErr.Error())
			}
			req.Messages = append(req.Messages, provider.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: tc.ID,
			})
		}

		s.logger.Debug("tool round complete",
			zap.Int("round", round+1),
			zap.Int("tool_calls", len(resp.ToolCalls)))
	}

	reply := &Reply{
		ID:      uuid.NewString(),
		Text:    resp.Content,
		Content: resp.Content,
		Usage:   resp.Usage,
	}

	s.mu.Lock()
	s.history = append(s.history, provider.Message{Role: "assistant", Content: resp.Content})
	obs := make([]ReplyObserver, len(s.replyObs))
	copy(obs, s.replyObs)
	s.mu.Unlock()

	if err := s.synthesize(ctx, reply.Text); err != nil {
		s.logger.Warn("speech synthesis failed", zap.Error(err))
	}

	for _, fn := range obs {
		fn(reply)
	}
	return reply, nil
}

// synthesize turns reply text into audio and plays it into the room. The
// synthesis hooks fire whenever text reaches the synthesizer, whether or not
// playback succeeds.
func (s *Session) synthesize(ctx context.Context, text string) error {
	if text == "" || s.cfg.TTS == nil {
		return nil
	}

	s.mu.Lock()
	hooks := make([]SynthesisHook, len(s.synthHooks))
	copy(hooks, s.synthHooks)
	room := s.room
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(text)
	}

	audio, err := s.cfg.TTS.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if sink, ok := room.(transport.AudioSink); ok {
		if err := sink.WriteAudio(ctx, audio); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
	}
	return nil
}
