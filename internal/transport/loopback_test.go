package transport

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLoopbackPublishAndClose(t *testing.T) {
	room := NewLoopbackRoom("lobby", "agent")

	if room.State() != StateConnected {
		t.Fatalf("state = %s", room.State())
	}
	lp := room.LocalParticipant()
	if lp == nil || lp.Identity() != "agent" {
		t.Fatal("missing local participant")
	}

	if err := lp.PublishData(context.Background(), []byte("hello")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := <-room.Data(); string(got) != "hello" {
		t.Errorf("payload = %q", got)
	}

	room.Close()
	room.Close() // idempotent

	if room.State() != StateDisconnected {
		t.Errorf("state after close = %s", room.State())
	}
	if err := lp.PublishData(context.Background(), []byte("late")); err == nil {
		t.Error("expected publish to fail after close")
	}
	select {
	case <-room.Done():
	default:
		t.Error("done channel not closed")
	}
}

func TestNewConnectorSelectsLoopback(t *testing.T) {
	logger := zap.NewNop()

	for _, url := range []string{"", "loopback", "loopback://local"} {
		c, err := NewConnector(url, logger)
		if err != nil {
			t.Fatalf("url %q: %v", url, err)
		}
		if _, ok := c.(*LoopbackConnector); !ok {
			t.Errorf("url %q: got %T", url, c)
		}
	}

	if _, err := NewConnector("wss://media.example.com", logger); err == nil {
		t.Error("expected error for unsupported url")
	}
}

func TestConnectRequiresRoomName(t *testing.T) {
	c := NewLoopbackConnector(zap.NewNop())
	if _, err := c.Connect(context.Background(), "", "agent"); err == nil {
		t.Error("expected error for empty room")
	}
}
