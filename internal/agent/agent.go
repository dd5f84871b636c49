package agent

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/tools"
)

// Agent is one conversation agent instance. It owns the ledger and the tool
// dispatcher for a single call; nothing here is shared across sessions.
type Agent struct {
	persona    Persona
	ledger     *tools.Ledger
	dispatcher *tools.Dispatcher
}

// Options tunes agent construction.
type Options struct {
	// ToolDelay overrides the simulated tool latency. Zero keeps per-tool
	// defaults; negative disables the delay.
	ToolDelay time.Duration
	// Directory answers find_person lookups. Nil uses the simulated
	// random directory.
	Directory tools.Directory
}

// New creates an agent with the default office assistant persona, a fresh
// ledger, and the office tool set registered.
func New(opts Options, logger *zap.Logger) *Agent {
	a := &Agent{
		persona:    OfficeAssistant(),
		ledger:     tools.NewLedger(),
		dispatcher: tools.NewDispatcher(opts.ToolDelay),
	}
	dir := opts.Directory
	if dir == nil {
		dir = tools.NewRandomDirectory(rand.NewSource(time.Now().UnixNano()))
	}
	tools.RegisterOfficeTools(a.dispatcher, a.ledger, dir, logger)
	return a
}

// Persona returns the agent's identity.
func (a *Agent) Persona() Persona {
	return a.persona
}

// Ledger returns the conversation state ledger.
func (a *Agent) Ledger() *tools.Ledger {
	return a.ledger
}

// Dispatcher returns the tool dispatcher.
func (a *Agent) Dispatcher() *tools.Dispatcher {
	return a.dispatcher
}

// GreetingInstructions is the one-off instruction that produces the opening
// line when the agent joins a session.
func (a *Agent) GreetingInstructions() string {
	return "Introduce yourself and ask how you can help."
}
