package capability

import "context"

// STT transcribes caller audio into text.
type STT interface {
	Recognize(ctx context.Context, audio []byte) (string, error)
}

// TTS synthesizes agent text into playable audio.
type TTS interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
