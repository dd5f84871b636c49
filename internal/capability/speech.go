package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteSTT implements STT against a speech-gateway HTTP endpoint.
type RemoteSTT struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewRemoteSTT creates a speech-to-text client.
func NewRemoteSTT(endpoint, apiKey, model string) *RemoteSTT {
	return &RemoteSTT{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Recognize posts raw audio and returns the transcript.
func (s *RemoteSTT) Recognize(ctx context.Context, audio []byte) (string, error) {
	u := s.endpoint
	if s.model != "" {
		u += "?model=" + url.QueryEscape(s.model)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stt error %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.Text, nil
}

// RemoteTTS implements TTS against a speech-gateway HTTP endpoint.
type RemoteTTS struct {
	endpoint string
	apiKey   string
	model    string
	voice    string
	client   *http.Client
}

// NewRemoteTTS creates a text-to-speech client.
func NewRemoteTTS(endpoint, apiKey, model, voice string) *RemoteTTS {
	return &RemoteTTS{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		voice:    voice,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize posts text and returns raw audio bytes.
func (t *RemoteTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{
		"text":  text,
		"model": t.model,
		"voice": t.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts error %d: %s", resp.StatusCode, string(errBody))
	}
	return io.ReadAll(resp.Body)
}
