package capability

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"
)

// VADModel detects voice activity in PCM frames. One model is loaded per
// worker process and shared read-only across every session the worker hosts.
type VADModel struct {
	threshold float64
	frameSize int
}

type vadTuning struct {
	Threshold float64 `json:"threshold"`
	FrameSize int     `json:"frame_size"`
}

// LoadVAD loads a detection model. path may point at a JSON tuning file; an
// empty path yields the built-in defaults.
func LoadVAD(path string) (*VADModel, error) {
	m := &VADModel{threshold: 0.015, frameSize: 480}
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vad tuning %s: %w", path, err)
	}
	var t vadTuning
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse vad tuning %s: %w", path, err)
	}
	if t.Threshold > 0 {
		m.threshold = t.Threshold
	}
	if t.FrameSize > 0 {
		m.frameSize = t.FrameSize
	}
	return m, nil
}

var (
	vadOnce   sync.Once
	vadShared *VADModel
	vadErr    error
)

// PreloadVAD loads the shared model once per process. Subsequent calls return
// the same model regardless of path.
func PreloadVAD(path string) (*VADModel, error) {
	vadOnce.Do(func() {
		vadShared, vadErr = LoadVAD(path)
	})
	return vadShared, vadErr
}

// Detect reports whether the 16-bit little-endian PCM frame carries speech,
// using normalized signal energy against the model threshold.
func (m *VADModel) Detect(pcm []byte) bool {
	if len(pcm) < 2 {
		return false
	}
	var sum float64
	n := len(pcm) / 2
	for i := 0; i < n; i++ {
		s := int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum/float64(n)) >= m.threshold
}
