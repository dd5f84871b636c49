package tools

import (
	"strings"
	"sync"
)

// Meeting is an entry in the calendar ledger. Meetings are append-only: no
// update or delete operation exists, and ids are unique and strictly
// increasing within one agent instance.
type Meeting struct {
	ID           int      `json:"id"`
	Organizer    string   `json:"organizer"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Topic        string   `json:"topic"`
	Participants []string `json:"participants"`
}

// Note is a message taken for someone in the office.
type Note struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Urgency   string `json:"urgency"`
	Timestamp string `json:"timestamp"`
}

// Ledger is the in-memory conversation state: the meeting calendar and the
// per-recipient message lists. Each conversation agent owns exactly one
// ledger; it is discarded with the agent when the call ends.
type Ledger struct {
	mu       sync.Mutex
	meetings []Meeting
	notes    map[string][]Note
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{notes: make(map[string][]Note)}
}

// AddMeeting appends a meeting and assigns the next id.
func (l *Ledger) AddMeeting(m Meeting) Meeting {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.ID = len(l.meetings) + 1
	if m.Participants == nil {
		m.Participants = []string{}
	}
	l.meetings = append(l.meetings, m)
	return m
}

// Meetings returns a copy of the meeting list.
func (l *Ledger) Meetings() []Meeting {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Meeting, len(l.meetings))
	copy(out, l.meetings)
	return out
}

// IsBooked reports whether any meeting on the given date has a time string
// containing timeRange. This is a containment check, not interval overlap:
// callers must phrase timeRange the way the meeting time was recorded.
func (l *Ledger) IsBooked(date, timeRange string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.meetings {
		if m.Date == date && strings.Contains(m.Time, timeRange) {
			return true
		}
	}
	return false
}

// AddNote appends a note to the recipient's list, creating it if absent.
func (l *Ledger) AddNote(to string, n Note) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes[to] = append(l.notes[to], n)
}

// Notes returns a copy of the recipient's note list in insertion order.
func (l *Ledger) Notes(to string) []Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Note, len(l.notes[to]))
	copy(out, l.notes[to])
	return out
}
