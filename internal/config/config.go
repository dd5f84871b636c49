package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Transport TransportConfig `json:"transport"`
	Providers ProvidersConfig `json:"providers"`
	Agent     AgentConfig     `json:"agent"`
	Ambient   AmbientConfig   `json:"ambient"`
	Events    EventsConfig    `json:"events"`
}

// ServerConfig configures the credential HTTP service.
type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

// TransportConfig holds the call transport endpoint and signing credentials.
type TransportConfig struct {
	URL       string `json:"url"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Room      string `json:"room"`
}

// ProvidersConfig configures the speech/LLM capability endpoints.
type ProvidersConfig struct {
	LLM LLMConfig    `json:"llm"`
	STT SpeechConfig `json:"stt"`
	TTS SpeechConfig `json:"tts"`
	VAD VADConfig    `json:"vad"`
}

// LLMConfig configures an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	ID       string   `json:"id"`
	Endpoint string   `json:"endpoint"`
	APIKey   string   `json:"api_key"`
	Model    string   `json:"model"`
	Fallback []string `json:"fallback,omitempty"`
}

// SpeechConfig configures a speech capability endpoint.
type SpeechConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Voice    string `json:"voice,omitempty"`
}

// VADConfig configures the voice-activity-detection model.
type VADConfig struct {
	ModelPath string `json:"model_path"`
}

// AgentConfig tunes the conversation agent.
type AgentConfig struct {
	// ToolDelayMS overrides the simulated backend latency of tool calls,
	// in milliseconds. Zero keeps the per-tool defaults; negative disables
	// the delay.
	ToolDelayMS int `json:"tool_delay_ms"`
	MaxJobs     int `json:"max_jobs"`
}

// ToolDelay returns the configured delay override as a duration.
func (a AgentConfig) ToolDelay() time.Duration {
	if a.ToolDelayMS < 0 {
		return -1
	}
	return time.Duration(a.ToolDelayMS) * time.Millisecond
}

// AmbientConfig configures the optional background-audio layer.
type AmbientConfig struct {
	Enabled  bool    `json:"enabled"`
	ClipPath string  `json:"clip_path"`
	Volume   float64 `json:"volume"`
}

// EventsConfig configures the optional transcript mirror.
type EventsConfig struct {
	RedisURL string `json:"redis_url"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Ambient.Volume == 0 {
		cfg.Ambient.Volume = 0.3
	}
	return &cfg, nil
}
