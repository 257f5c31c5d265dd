package pipeline

import (
	"context"
	"log/slog"
	"time"

	"shortforge/internal/config"
	"shortforge/internal/deps"
	"shortforge/internal/logging"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/media/ffprobe"
	"shortforge/internal/queue"
	"shortforge/internal/services/facelocator"
	"shortforge/internal/services/llm"
	"shortforge/internal/services/pexels"
	"shortforge/internal/services/tts"
	"shortforge/internal/services/whisperx"
	"shortforge/internal/services/ytdlp"
	"shortforge/internal/stage"
	"shortforge/internal/virality"
)

// Handlers builds the clip and generate handlers backed by the real tools.
func Handlers(cfg *config.Config, logger *slog.Logger) []stage.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	prober := ffprobe.Prober{Binary: cfg.Encoding.FFprobeBinary}
	tool := ffmpeg.New(cfg)
	transcriber := whisperx.NewService(whisperx.Config{
		Model:        cfg.WhisperX.Model,
		CUDAEnabled:  cfg.WhisperX.CUDAEnabled,
		VADMethod:    cfg.WhisperX.VADMethod,
		HFToken:      cfg.WhisperX.HFToken,
		Language:     cfg.WhisperX.Language,
		ScratchDir:   cfg.Paths.WorkDir,
		FFmpegBinary: cfg.Encoding.FFmpegBinary,
	})
	scorer := virality.NewScorer(prober, transcriber, logger)

	clipDeps := ClipDeps{
		Downloader: ytdlp.New(ytdlp.Config{
			Binary:   cfg.Download.Binary,
			Format:   cfg.Download.Format,
			Attempts: cfg.Download.Attempts,
			MinWait:  time.Duration(cfg.Download.MinWaitSeconds) * time.Second,
			MaxWait:  time.Duration(cfg.Download.MaxWaitSeconds) * time.Second,
		}, logger),
		Prober:      prober,
		Transcriber: transcriber,
		Frames:      tool,
		Encoder:     tool,
		Scorer:      scorer,
		Health:      binaryHealth("clip", cfg, "FFmpeg", "FFprobe", "yt-dlp", "uvx"),
	}
	if locator := facelocator.New(cfg.Face.Command, cfg.Face.Args); locator != nil {
		clipDeps.Faces = locator
	}
	clip := NewClipHandler(clipDeps, ClipSettings{
		WorkDir:     cfg.Paths.WorkDir,
		OutputDir:   cfg.Paths.OutputDir,
		WordsPerCue: cfg.Clip.WordsPerCue,
		Defaults: queue.ClipOptions{
			MinDuration:  cfg.Clip.MinDuration,
			MaxDuration:  cfg.Clip.MaxDuration,
			MaxClips:     cfg.Clip.MaxClips,
			BurnCaptions: cfg.Clip.BurnCaptions,
		},
	}, logger)

	writer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	footage := pexels.NewClient(pexels.Config{
		APIKey:         cfg.Stock.APIKey,
		BaseURL:        cfg.Stock.BaseURL,
		PerPage:        cfg.Stock.PerPage,
		Orientation:    cfg.Stock.Orientation,
		TimeoutSeconds: cfg.Stock.TimeoutSeconds,
	}, nil, logger)
	generate := NewGenerateHandler(GenerateDeps{
		Writer:    writer,
		Footage:   footage,
		Speech:    tts.New(cfg.TTS.Binary),
		Prober:    prober,
		Assembler: tool,
		Scorer:    scorer,
		Health: withCredentials(
			binaryHealth("generate", cfg, "FFmpeg", "FFprobe", "edge-tts"),
			credential{name: "llm.api_key", service: writer},
			credential{name: "stock.api_key", service: footage},
		),
	}, GenerateSettings{
		WorkDir:        cfg.Paths.WorkDir,
		OutputDir:      cfg.Paths.OutputDir,
		SegmentSeconds: cfg.Generate.SegmentSeconds,
		Defaults: queue.GenerateOptions{
			Voice:      cfg.Generate.Voice,
			MaxFootage: cfg.Generate.MaxFootage,
		},
	}, logger)

	return []stage.Handler{clip, generate}
}

// binaryHealth reports the named requirements from deps.Requirements.
func binaryHealth(name string, cfg *config.Config, required ...string) func(context.Context) stage.Health {
	wanted := make(map[string]bool, len(required))
	for _, req := range required {
		wanted[req] = true
	}
	return func(context.Context) stage.Health {
		var reqs []deps.Requirement
		for _, req := range deps.Requirements(cfg) {
			if wanted[req.Name] {
				reqs = append(reqs, req)
			}
		}
		return stage.Missing(name, "binaries", deps.MissingRequired(deps.CheckBinaries(reqs)))
	}
}

type credential struct {
	name    string
	service configurable
}

func withCredentials(base func(context.Context) stage.Health, creds ...credential) func(context.Context) stage.Health {
	return func(ctx context.Context) stage.Health {
		health := base(ctx)
		if !health.Ready {
			return health
		}
		var missing []string
		for _, cred := range creds {
			if cred.service == nil || !cred.service.Configured() {
				missing = append(missing, cred.name)
			}
		}
		return stage.Missing(health.Name, "credentials", missing)
	}
}
