package ambient

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/transport"
)

// buildWAV assembles a minimal PCM WAV byte stream around the given samples.
func buildWAV(t *testing.T, sampleRate uint32, channels uint16, samples []int16) []byte {
	t.Helper()
	var pcm bytes.Buffer
	for _, s := range samples {
		binary.Write(&pcm, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	dataSize := uint32(pcm.Len())
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*uint32(channels)*2) // byte rate
	binary.Write(&buf, binary.LittleEndian, channels*2)                    // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))                    // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	data := buildWAV(t, 16000, 1, []int16{100, -100, 32000, -32000})

	clip, err := ParseWAV(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if clip.SampleRate != 16000 || clip.Channels != 1 || clip.BitsPerSamp != 16 {
		t.Errorf("format = %+v", clip)
	}
	if len(clip.PCM) != 8 {
		t.Errorf("pcm length = %d, want 8", len(clip.PCM))
	}
}

func TestParseWAVRejectsBadInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"not riff":  []byte("JUNKJUNKJUNKJUNK"),
		"no chunks": []byte("RIFF\x04\x00\x00\x00WAVE"),
		"truncated": append(buildWAV(t, 16000, 1, []int16{1, 2, 3, 4})[:20], 0xff),
		"non-pcm":   buildNonPCM(t),
	}
	for name, data := range cases {
		if _, err := ParseWAV(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func buildNonPCM(t *testing.T) []byte {
	t.Helper()
	data := buildWAV(t, 16000, 1, []int16{1, 2})
	// Flip the audio format field to IEEE float.
	data[20] = 3
	return data
}

func TestScaleReducesAmplitude(t *testing.T) {
	pcm := make([]byte, 4)
	pos, neg := int16(10000), int16(-10000)
	binary.LittleEndian.PutUint16(pcm[0:2], uint16(pos))
	binary.LittleEndian.PutUint16(pcm[2:4], uint16(neg))

	out := scale(pcm, 0.3)
	a := int16(binary.LittleEndian.Uint16(out[0:2]))
	b := int16(binary.LittleEndian.Uint16(out[2:4]))
	if a != 3000 || b != -3000 {
		t.Errorf("scaled = %d, %d", a, b)
	}
}

func TestClipPlayerLoopsIntoRoom(t *testing.T) {
	clip := &Clip{SampleRate: 16000, Channels: 1, BitsPerSamp: 16, PCM: make([]byte, 3200)}
	p := NewClipPlayer(clip, 0.3, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx, room); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	// More bytes than the clip holds proves the loop wrapped around.
	for time.Now().Before(deadline) && room.AudioBytes() <= len(clip.PCM) {
		time.Sleep(20 * time.Millisecond)
	}
	p.Stop()

	if room.AudioBytes() <= len(clip.PCM) {
		t.Errorf("wrote %d bytes, want more than one clip length %d", room.AudioBytes(), len(clip.PCM))
	}
}

func TestClipPlayerRejectsDoubleStart(t *testing.T) {
	clip := &Clip{SampleRate: 16000, Channels: 1, BitsPerSamp: 16, PCM: make([]byte, 320)}
	p := NewClipPlayer(clip, 0.3, zap.NewNop())
	room := transport.NewLoopbackRoom("test-room", "agent")

	if err := p.Start(context.Background(), room); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop()

	if err := p.Start(context.Background(), room); err == nil {
		t.Error("expected error on second start")
	}
}

func TestAcquireFallsBackOnFailure(t *testing.T) {
	logger := zap.NewNop()
	room := transport.NewLoopbackRoom("test-room", "agent")

	p, ok := Acquire(context.Background(), failingPlayer{}, room, logger)
	if ok {
		t.Error("expected ok=false")
	}
	if _, isNop := p.(NopPlayer); !isNop {
		t.Errorf("got %T, want NopPlayer", p)
	}

	p, ok = Acquire(context.Background(), nil, room, logger)
	if ok {
		t.Error("nil player must not report ok")
	}
	p.Stop()
}

type failingPlayer struct{}

func (failingPlayer) Start(ctx context.Context, room transport.Room) error {
	return fmt.Errorf("no clip")
}
func (failingPlayer) Stop() {}
