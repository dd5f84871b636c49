package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/agent"
	"github.com/brightline/frontdesk/internal/ambient"
	"github.com/brightline/frontdesk/internal/capability"
	"github.com/brightline/frontdesk/internal/config"
	"github.com/brightline/frontdesk/internal/events"
	"github.com/brightline/frontdesk/internal/provider"
	"github.com/brightline/frontdesk/internal/relay"
	"github.com/brightline/frontdesk/internal/session"
	"github.com/brightline/frontdesk/internal/transport"
	"github.com/brightline/frontdesk/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting frontdesk agent...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/frontdesk.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	// LLM provider router with fallback chain
	router := provider.NewRouter(logger)
	router.Register(provider.NewOpenAIProvider(provider.ProviderConfig{
		ID:       cfg.Providers.LLM.ID,
		Name:     cfg.Providers.LLM.ID,
		Endpoint: cfg.Providers.LLM.Endpoint,
		APIKey:   cfg.Providers.LLM.APIKey,
	}, logger))
	router.SetFallbacks(cfg.Providers.LLM.Fallback)

	stt := capability.NewRemoteSTT(cfg.Providers.STT.Endpoint, cfg.Providers.STT.APIKey, cfg.Providers.STT.Model)
	tts := capability.NewRemoteTTS(cfg.Providers.TTS.Endpoint, cfg.Providers.TTS.APIKey, cfg.Providers.TTS.Model, cfg.Providers.TTS.Voice)

	// Optional transcript mirror
	var mirror relay.Mirror
	stream, streamErr := events.NewStream(cfg.Events.RedisURL, logger)
	if streamErr != nil {
		logger.Warn("Redis unavailable, running without transcript mirror", zap.Error(streamErr))
	} else {
		mirror = stream
	}

	connector, err := transport.NewConnector(cfg.Transport.URL, logger)
	if err != nil {
		logger.Fatal("failed to create connector", zap.Error(err))
	}

	// Optional background audio
	var newAmbient func() ambient.Player
	if cfg.Ambient.Enabled {
		clip, clipErr := ambient.LoadWAV(cfg.Ambient.ClipPath)
		if clipErr != nil {
			logger.Warn("failed to load ambient clip, continuing without background audio", zap.Error(clipErr))
		} else {
			volume := cfg.Ambient.Volume
			newAmbient = func() ambient.Player {
				return ambient.NewClipPlayer(clip, volume, logger)
			}
		}
	}

	w, err := worker.New(worker.Options{
		MaxJobs: cfg.Agent.MaxJobs,
		Prewarm: func(proc *worker.Process) error {
			vad, vadErr := capability.PreloadVAD(cfg.Providers.VAD.ModelPath)
			if vadErr != nil {
				return vadErr
			}
			proc.Set("vad", vad)
			return nil
		},
		Entrypoint: func(ctx context.Context, proc *worker.Process, job worker.Job) error {
			vad, _ := proc.Get("vad")
			orch := session.New(session.Options{
				Connector: connector,
				Caps: session.Capabilities{
					VAD:   vad.(*capability.VADModel),
					STT:   stt,
					TTS:   tts,
					LLM:   router,
					Model: cfg.Providers.LLM.Model,
				},
				Agent: agent.Options{
					ToolDelay: cfg.Agent.ToolDelay(),
				},
				NewAmbient: newAmbient,
				Mirror:     mirror,
				Logger:     logger,
			})
			return orch.Run(ctx, job.Room, job.Identity)
		},
	}, logger)
	if err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	room := cfg.Transport.Room
	if room == "" {
		room = "front-desk"
	}
	if _, err := w.Submit(ctx, worker.Job{Room: room, Identity: "agent"}); err != nil {
		logger.Fatal("failed to submit job", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down frontdesk agent...")
	cancel()
	if err := w.Stop(30 * time.Second); err != nil {
		logger.Warn("worker stop", zap.Error(err))
	}
	if stream != nil {
		stream.Close()
	}
}
