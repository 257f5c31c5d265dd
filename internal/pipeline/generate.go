package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shortforge/internal/logging"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/services/llm"
	"shortforge/internal/stage"
)

// Generate progress checkpoints.
const (
	generateProgressScripted  = 20
	generateProgressFootage   = 40
	generateProgressNarrated  = 60
	generateProgressAssembled = 90
)

// GenerateDeps bundles the capabilities the generate pipeline needs.
type GenerateDeps struct {
	Writer    ScriptGenerator
	Footage   FootageSearcher
	Speech    SpeechSynthesizer
	Prober    Prober
	Assembler Assembler
	Scorer    ViralityScorer
	Health    func(ctx context.Context) stage.Health
}

// GenerateSettings are the filesystem and assembly settings of the generate
// pipeline.
type GenerateSettings struct {
	WorkDir        string
	OutputDir      string
	SegmentSeconds float64
	Defaults       queue.GenerateOptions
}

// GenerateHandler turns a topic into a narrated short.
type GenerateHandler struct {
	deps     GenerateDeps
	settings GenerateSettings
	logger   *slog.Logger
}

// NewGenerateHandler builds the generate pipeline.
func NewGenerateHandler(deps GenerateDeps, settings GenerateSettings, logger *slog.Logger) *GenerateHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if settings.SegmentSeconds <= 0 {
		settings.SegmentSeconds = ffmpeg.DefaultSegmentSeconds
	}
	return &GenerateHandler{
		deps:     deps,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "generate"),
	}
}

// Kind reports the job kind this handler runs.
func (h *GenerateHandler) Kind() queue.Kind {
	return queue.KindGenerate
}

// HealthCheck reports whether the pipeline's tools and keys are available.
func (h *GenerateHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.deps.Health != nil {
		return h.deps.Health(ctx)
	}
	return stage.Healthy("generate")
}

// Run executes the generate pipeline for job. The job input is the topic.
func (h *GenerateHandler) Run(ctx context.Context, job *queue.Job, reporter *stage.Reporter) (stage.Outcome, error) {
	logger := logging.WithContext(ctx, h.logger)
	opts := h.options(job)
	topic := strings.TrimSpace(job.Input)

	ws, err := NewWorkspace(h.settings.WorkDir, job.ID)
	if err != nil {
		return stage.Outcome{}, services.Wrap(services.ErrConfiguration, "script", "create workspace", "", err)
	}
	if err := os.MkdirAll(h.settings.OutputDir, 0o755); err != nil {
		_ = ws.Close()
		return stage.Outcome{}, services.Wrap(services.ErrConfiguration, "script", "ensure output dir", h.settings.OutputDir, err)
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			logger.Warn("workspace cleanup failed",
				logging.Error(cerr),
				logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "remove the job directory under paths.work_dir manually"),
			)
		}
	}()

	// Script
	if err := reporter.Log(ctx, "Generating script..."); err != nil {
		return stage.Outcome{}, err
	}
	script, err := h.deps.Writer.GenerateScript(ctx, topic)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return stage.Outcome{}, services.Wrap(services.ErrConfiguration, "script", "generate script", "set llm.api_key or OPENROUTER_API_KEY", err)
		}
		return stage.Outcome{}, services.Wrap(services.ErrExternalTool, "script", "generate script", "", err)
	}
	if err := reporter.SetProgress(ctx, generateProgressScripted); err != nil {
		return stage.Outcome{}, err
	}
	logger.Info("script generated",
		logging.String("title", script.Title),
		logging.Int("keywords", len(script.Keywords)),
		logging.String(logging.FieldEventType, "script_generated"),
	)

	// Visuals
	if err := reporter.Log(ctx, "Fetching visuals..."); err != nil {
		return stage.Outcome{}, err
	}
	keywords := script.Keywords
	if len(keywords) == 0 {
		keywords = []string{topic}
	}
	footage, err := h.deps.Footage.Fetch(ctx, keywords, opts.MaxFootage, ws.Path("footage"))
	if err != nil {
		return stage.Outcome{}, err
	}
	if len(footage) == 0 {
		return stage.Outcome{}, services.Wrap(services.ErrNotFound, "visuals", "search footage", "no visuals found", nil)
	}
	if err := reporter.SetProgress(ctx, generateProgressFootage); err != nil {
		return stage.Outcome{}, err
	}

	// Narration
	if err := reporter.Log(ctx, "Generating audio..."); err != nil {
		return stage.Outcome{}, err
	}
	narration := ws.Path(job.ID + ".mp3")
	if err := h.deps.Speech.Synthesize(ctx, script.Script, opts.Voice, narration); err != nil {
		return stage.Outcome{}, err
	}
	if err := reporter.SetProgress(ctx, generateProgressNarrated); err != nil {
		return stage.Outcome{}, err
	}

	// Assembly
	if err := reporter.Log(ctx, "Assembling video..."); err != nil {
		return stage.Outcome{}, err
	}
	info, err := h.deps.Prober.Probe(ctx, narration)
	if err != nil {
		return stage.Outcome{}, err
	}
	if info.Duration <= 0 {
		return stage.Outcome{}, services.Wrap(services.ErrExternalTool, "audio", "probe narration", "narration has no duration", nil)
	}
	output := ws.Output(filepath.Join(h.settings.OutputDir, job.ID+".mp4"))
	if err := h.deps.Assembler.Assemble(ctx, ffmpeg.AssembleRequest{
		Footage:        footage,
		Narration:      narration,
		Duration:       info.Duration,
		SegmentSeconds: h.settings.SegmentSeconds,
		Output:         output,
	}); err != nil {
		return stage.Outcome{}, err
	}
	if err := reporter.SetProgress(ctx, generateProgressAssembled); err != nil {
		return stage.Outcome{}, err
	}

	// Score
	outcome := stage.Outcome{OutputRef: output}
	if h.deps.Scorer != nil {
		breakdown := h.deps.Scorer.Score(ctx, output)
		if breakdown.Neutral {
			logger.Warn("virality score unavailable",
				logging.Float64("neutral_score", breakdown.Total),
				logging.String(logging.FieldEventType, "generate_score_unavailable"),
			)
		} else {
			total := breakdown.Total
			outcome.Score = &total
		}
	}
	ws.Commit()
	logger.Info("video generated",
		logging.String("output", output),
		logging.Int("footage_clips", len(footage)),
		logging.Float64("narration_seconds", info.Duration),
		logging.String(logging.FieldEventType, "video_generated"),
	)
	return outcome, nil
}

func (h *GenerateHandler) options(job *queue.Job) queue.GenerateOptions {
	opts := h.settings.Defaults
	if job.GenerateOptions != nil {
		opts = *job.GenerateOptions
	}
	if strings.TrimSpace(opts.Voice) == "" {
		opts.Voice = queue.DefaultVoice
	}
	if opts.MaxFootage <= 0 {
		opts.MaxFootage = queue.DefaultGenerateOptions().MaxFootage
	}
	return opts
}
