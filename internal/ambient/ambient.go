// Package ambient plays looping background audio into a room so callers hear
// a live office rather than dead air.
package ambient

import (
	"context"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/transport"
)

// Player loops background audio into a room until stopped.
type Player interface {
	Start(ctx context.Context, room transport.Room) error
	Stop()
}

// NopPlayer plays nothing. Used when ambient audio is disabled or failed to
// start.
type NopPlayer struct{}

func (NopPlayer) Start(ctx context.Context, room transport.Room) error { return nil }
func (NopPlayer) Stop()                                                {}

// Acquire starts the player against the room. Ambient audio is a nicety: on
// any failure it logs a warning and returns a NopPlayer with ok=false so the
// call continues in silence.
func Acquire(ctx context.Context, p Player, room transport.Room, logger *zap.Logger) (Player, bool) {
	if p == nil {
		return NopPlayer{}, false
	}
	if err := p.Start(ctx, room); err != nil {
		logger.Warn("failed to start background audio, continuing without background audio",
			zap.Error(err))
		return NopPlayer{}, false
	}
	logger.Info("background audio started successfully")
	return p, true
}
