package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/agent"
	"github.com/brightline/frontdesk/internal/provider"
	"github.com/brightline/frontdesk/internal/transport"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []*provider.ChatResponse
	requests  []*provider.ChatRequest
	calls     int
}

func (p *scriptedProvider) ID() string   { return "scripted" }
func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	reqCopy := *req
	reqCopy.Messages = append([]provider.Message(nil), req.Messages...)
	p.requests = append(p.requests, &reqCopy)
	if p.calls >= len(p.responses) {
		return nil, fmt.Errorf("no scripted response for call %d", p.calls)
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func (p *scriptedProvider) HealthCheck(ctx context.Context) error { return nil }

type fakeTTS struct {
	synthesized []string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.synthesized = append(f.synthesized, text)
	return []byte("pcm:" + text), nil
}

func newTestSession(t *testing.T, scripted *scriptedProvider, tts *fakeTTS) *Session {
	t.Helper()
	logger := zap.NewNop()
	router := provider.NewRouter(logger)
	router.Register(scripted)
	return NewSession(Config{
		TTS:   tts,
		LLM:   router,
		Model: "test-model",
	}, logger)
}

func textResponse(text string) *provider.ChatResponse {
	return &provider.ChatResponse{
		ID:           "resp",
		Content:      text,
		FinishReason: "stop",
	}
}

func toolCallResponse(name, args string) *provider.ChatResponse {
	return &provider.ChatResponse{
		ID:           "resp",
		FinishReason: "tool_calls",
		ToolCalls: []provider.ToolCall{{
			ID:   "call-1",
			Type: "function",
			Function: provider.ToolCallFunction{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

func TestStartGeneratesGreeting(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{
		textResponse("Hi, this is Alex from Tech Solutions. How can I help?"),
	}}
	tts := &fakeTTS{}
	s := newTestSession(t, scripted, tts)

	var replies []*Reply
	if err := s.OnReply(func(r *Reply) { replies = append(replies, r) }); err != nil {
		t.Fatalf("on reply: %v", err)
	}

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start: %v", err)
	}

	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	if !strings.Contains(replies[0].Text, "Alex") {
		t.Errorf("greeting = %q", replies[0].Text)
	}

	// The greeting request carries the persona system prompt and the
	// greeting instruction.
	req := scripted.requests[0]
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "Alex") {
		t.Errorf("first message = %+v", req.Messages[0])
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Content != a.GreetingInstructions() {
		t.Errorf("greeting instruction = %q", last.Content)
	}

	if room.AudioBytes() == 0 {
		t.Error("greeting audio never reached the room")
	}
	if len(tts.synthesized) != 1 {
		t.Errorf("synthesized %d utterances, want 1", len(tts.synthesized))
	}
}

func TestObserverRegistrationAfterStartFails(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{textResponse("hi")}}
	s := newTestSession(t, scripted, &fakeTTS{})

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := s.OnReply(func(*Reply) {}); err == nil {
		t.Error("expected OnReply after start to fail")
	}
	if err := s.OnSynthesis(func(string) {}); err == nil {
		t.Error("expected OnSynthesis after start to fail")
	}
}

func TestGenerateReplyRunsToolRounds(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{
		textResponse("greeting"),
		toolCallResponse("check_availability", `{"date":"2026-09-01","time_range":"10:00"}`),
		textResponse("That slot is free. Shall I book it?"),
	}}
	s := newTestSession(t, scripted, &fakeTTS{})

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start: %v", err)
	}

	reply, err := s.HandleText(context.Background(), "Is 10am on September 1st free?")
	if err != nil {
		t.Fatalf("handle text: %v", err)
	}
	if reply.Text != "That slot is free. Shall I book it?" {
		t.Errorf("reply = %q", reply.Text)
	}

	// The final request must carry the tool result back to the model.
	final := scripted.requests[len(scripted.requests)-1]
	var toolMsg *provider.Message
	for i := range final.Messages {
		if final.Messages[i].Role == "tool" {
			toolMsg = &final.Messages[i]
		}
	}
	if toolMsg == nil {
		t.Fatal("no tool message in follow-up request")
	}
	if !strings.Contains(toolMsg.Content, "is available") {
		t.Errorf("tool result = %q", toolMsg.Content)
	}
	if toolMsg.ToolCallID != "call-1" {
		t.Errorf("tool call id = %q", toolMsg.ToolCallID)
	}
}

func TestToolErrorIsReportedToModel(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{
		textResponse("greeting"),
		toolCallResponse("no_such_tool", `{}`),
		textResponse("Sorry, I could not do that."),
	}}
	s := newTestSession(t, scripted, &fakeTTS{})

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start: %v", err)
	}

	reply, err := s.HandleText(context.Background(), "do something odd")
	if err != nil {
		t.Fatalf("handle text: %v", err)
	}
	if reply.Text != "Sorry, I could not do that." {
		t.Errorf("reply = %q", reply.Text)
	}

	final := scripted.requests[len(scripted.requests)-1]
	found := false
	for _, m := range final.Messages {
		if m.Role == "tool" && strings.Contains(m.Content, "error") {
			found = true
		}
	}
	if !found {
		t.Error("tool error never sent back to the model")
	}
}

func TestSynthesisHookSeesEveryUtterance(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{
		textResponse("first"),
		textResponse("second"),
	}}
	s := newTestSession(t, scripted, &fakeTTS{})

	var spoken []string
	if err := s.OnSynthesis(func(text string) { spoken = append(spoken, text) }); err != nil {
		t.Fatalf("on synthesis: %v", err)
	}

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.HandleText(context.Background(), "hello"); err != nil {
		t.Fatalf("handle text: %v", err)
	}

	if len(spoken) != 2 || spoken[0] != "first" || spoken[1] != "second" {
		t.Errorf("spoken = %v", spoken)
	}
}

func TestGenerateReplyBeforeStartFails(t *testing.T) {
	s := newTestSession(t, &scriptedProvider{}, &fakeTTS{})
	if _, err := s.GenerateReply(context.Background(), "say hi"); err == nil {
		t.Error("expected error before start")
	}
}

func TestSynthesisFailureDoesNotFailTurn(t *testing.T) {
	scripted := &scriptedProvider{responses: []*provider.ChatResponse{textResponse("hi")}}
	logger := zap.NewNop()
	router := provider.NewRouter(logger)
	router.Register(scripted)
	s := NewSession(Config{
		TTS:   failingTTS{},
		LLM:   router,
		Model: "test-model",
	}, logger)

	a := agent.New(agent.Options{ToolDelay: -1}, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")
	if err := s.Start(context.Background(), a, room); err != nil {
		t.Fatalf("start should survive tts failure, got %v", err)
	}
}

type failingTTS struct{}

func (failingTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return nil, fmt.Errorf("speech gateway down")
}
