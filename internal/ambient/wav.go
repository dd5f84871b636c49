package ambient

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Clip is decoded PCM audio ready for playback.
type Clip struct {
	SampleRate  uint32
	Channels    uint16
	BitsPerSamp uint16
	PCM         []byte
}

// LoadWAV reads a PCM WAV file. Only uncompressed 16-bit PCM is supported.
func LoadWAV(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clip %s: %w", path, err)
	}
	return ParseWAV(data)
}

// ParseWAV decodes a RIFF/WAVE byte stream.
func ParseWAV(data []byte) (*Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	clip := &Clip{}
	var haveFmt, haveData bool

	// Walk the chunk list. Chunks other than fmt and data are skipped.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("truncated chunk %q", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported audio format %d, want PCM", format)
			}
			clip.Channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			clip.SampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			clip.BitsPerSamp = binary.LittleEndian.Uint16(data[body+14 : body+16])
			if clip.BitsPerSamp != 16 {
				return nil, fmt.Errorf("unsupported bit depth %d, want 16", clip.BitsPerSamp)
			}
			haveFmt = true
		case "data":
			clip.PCM = data[body : body+size]
			haveData = true
		}

		// Chunks are word aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt || !haveData {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	return clip, nil
}

// scale returns a copy of 16-bit little-endian PCM with amplitude multiplied
// by volume, clamped to the int16 range.
func scale(pcm []byte, volume float64) []byte {
	out := make([]byte, len(pcm))
	n := len(pcm) / 2
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2]))
		v := float64(s) * volume
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], uint16(int16(v)))
	}
	return out
}
