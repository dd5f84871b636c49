package ambient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/transport"
)

// DefaultVolume keeps office ambience quietly under the conversation.
const DefaultVolume = 0.3

const chunkInterval = 100 * time.Millisecond

// ClipPlayer loops one decoded clip into a room's audio sink at a reduced
// volume, in paced 100ms chunks.
type ClipPlayer struct {
	clip   *Clip
	volume float64
	logger *zap.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewClipPlayer creates a player for the clip. volume <= 0 uses the default.
func NewClipPlayer(clip *Clip, volume float64, logger *zap.Logger) *ClipPlayer {
	if volume <= 0 {
		volume = DefaultVolume
	}
	return &ClipPlayer{clip: clip, volume: volume, logger: logger}
}

// Start begins looping playback. It fails when the room cannot accept
// agent-side audio.
func (p *ClipPlayer) Start(ctx context.Context, room transport.Room) error {
	sink, ok := room.(transport.AudioSink)
	if !ok {
		return fmt.Errorf("room %s does not accept audio", room.Name())
	}
	if p.clip == nil || len(p.clip.PCM) == 0 {
		return fmt.Errorf("no audio clip loaded")
	}

	pcm := scale(p.clip.PCM, p.volume)
	chunk := p.chunkSize()

	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("player already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.stopped = make(chan struct{})
	p.mu.Unlock()

	go p.loop(loopCtx, sink, pcm, chunk)
	return nil
}

// Stop halts playback and waits for the loop to exit.
func (p *ClipPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	stopped := p.stopped
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	p.stopOnce.Do(cancel)
	<-stopped
}

func (p *ClipPlayer) loop(ctx context.Context, sink transport.AudioSink, pcm []byte, chunk int) {
	defer close(p.stopped)

	ticker := time.NewTicker(chunkInterval)
	defer ticker.Stop()

	pos := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		end := pos + chunk
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := sink.WriteAudio(ctx, pcm[pos:end]); err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("ambient playback write failed", zap.Error(err))
			}
			return
		}
		pos = end
		if pos >= len(pcm) {
			pos = 0
		}
	}
}

// chunkSize is the byte count of one playback interval of 16-bit PCM.
func (p *ClipPlayer) chunkSize() int {
	samples := int(p.clip.SampleRate) * int(p.clip.Channels) / 10
	n := samples * 2
	if n <= 0 || n > len(p.clip.PCM) {
		n = len(p.clip.PCM)
	}
	return n
}
