package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shortforge/internal/captions"
	"shortforge/internal/clipselect"
	"shortforge/internal/engagement"
	"shortforge/internal/framing"
	"shortforge/internal/logging"
	"shortforge/internal/media"
	"shortforge/internal/media/ffmpeg"
	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/stage"
	"shortforge/internal/transcript"
)

// Clip progress checkpoints.
const (
	clipProgressDownloadStarted = 10
	clipProgressDownloaded      = 30
	clipProgressTranscribed     = 40
	clipProgressSelected        = 50
	clipProgressFramed          = 60
	clipProgressEncoded         = 85
	clipProgressCaptioned       = 90
)

// ClipDeps bundles the capabilities the clip pipeline needs. Faces may be nil,
// in which case every frame is framed at the center.
type ClipDeps struct {
	Downloader  Downloader
	Prober      Prober
	Transcriber Transcriber
	Frames      FrameSource
	Faces       FaceLocator
	Encoder     Encoder
	Scorer      ViralityScorer
	Health      func(ctx context.Context) stage.Health
}

// ClipSettings are the filesystem and caption settings of the clip pipeline.
type ClipSettings struct {
	WorkDir     string
	OutputDir   string
	WordsPerCue int
	Defaults    queue.ClipOptions
}

// ClipHandler turns a long-form video URL into a vertical short.
type ClipHandler struct {
	deps     ClipDeps
	settings ClipSettings
	logger   *slog.Logger
}

// NewClipHandler builds the clip pipeline.
func NewClipHandler(deps ClipDeps, settings ClipSettings, logger *slog.Logger) *ClipHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if settings.WordsPerCue <= 0 {
		settings.WordsPerCue = captions.DefaultWordsPerCue
	}
	return &ClipHandler{
		deps:     deps,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "clip"),
	}
}

// Kind reports the job kind this handler runs.
func (h *ClipHandler) Kind() queue.Kind {
	return queue.KindClip
}

// HealthCheck reports whether the pipeline's tools are available.
func (h *ClipHandler) HealthCheck(ctx context.Context) stage.Health {
	if h.deps.Health != nil {
		return h.deps.Health(ctx)
	}
	return stage.Healthy("clip")
}

// Run executes the clip pipeline for job.
func (h *ClipHandler) Run(ctx context.Context, job *queue.Job, reporter *stage.Reporter) (stage.Outcome, error) {
	logger := logging.WithContext(ctx, h.logger)
	opts := h.options(job)

	ws, err := NewWorkspace(h.settings.WorkDir, job.ID)
	if err != nil {
		return stage.Outcome{}, services.Wrap(services.ErrConfiguration, "download", "create workspace", "", err)
	}
	if err := os.MkdirAll(h.settings.OutputDir, 0o755); err != nil {
		_ = ws.Close()
		return stage.Outcome{}, services.Wrap(services.ErrConfiguration, "download", "ensure output dir", h.settings.OutputDir, err)
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

	// Download
	if err := reporter.SetProgress(ctx, clipProgressDownloadStarted); err != nil {
		return stage.Outcome{}, err
	}
	source, err := h.deps.Downloader.Download(services.WithStage(ctx, "download"), job.Input, ws.Path("source"))
	if err != nil {
		return stage.Outcome{}, err
	}
	if err := reporter.SetProgress(ctx, clipProgressDownloaded); err != nil {
		return stage.Outcome{}, err
	}

	// Probe
	if err := reporter.Advance(ctx, queue.StatusProcessing, -1); err != nil {
		return stage.Outcome{}, err
	}
	info, err := h.deps.Prober.Probe(ctx, source)
	if err != nil {
		return stage.Outcome{}, err
	}
	if info.Duration <= 0 || info.Width <= 0 || info.Height <= 0 {
		return stage.Outcome{}, services.Wrap(services.ErrExternalTool, "probe", "inspect source",
			fmt.Sprintf("unusable media (duration %.2fs, %dx%d)", info.Duration, info.Width, info.Height), nil)
	}
	logger.Info("source probed",
		logging.Float64("duration_seconds", info.Duration),
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
		logging.Bool("has_audio", info.HasAudio),
		logging.String(logging.FieldEventType, "clip_source_probed"),
	)

	// Transcribe
	var segments []transcript.Segment
	if info.HasAudio && h.deps.Transcriber != nil {
		segments, err = h.deps.Transcriber.Transcribe(services.WithStage(ctx, "transcribe"), source, transcript.Span{})
		if err != nil {
			return stage.Outcome{}, err
		}
	}
	if err := reporter.SetProgress(ctx, clipProgressTranscribed); err != nil {
		return stage.Outcome{}, err
	}

	// Select
	candidate, err := h.selectCandidate(info, segments, opts)
	if err != nil {
		return stage.Outcome{}, err
	}
	logger.Info("clip window selected",
		logging.Float64("start", candidate.Start),
		logging.Float64("end", candidate.End),
		logging.Int("engagement_score", candidate.Score),
		logging.String("reason", candidate.Reason),
		logging.String(logging.FieldEventType, "clip_selected"),
	)
	if err := reporter.SetProgress(ctx, clipProgressSelected); err != nil {
		return stage.Outcome{}, err
	}

	// Frame
	duration := candidate.Duration()
	var frames framing.FrameSource
	if h.deps.Frames != nil {
		frames = h.deps.Frames.Frames(source, ws.Path("frames"))
	}
	points := framing.Track(ctx, frames, h.deps.Faces, candidate.Start, duration)
	path := framing.NewPath(points).Simplify()
	if err := reporter.SetProgress(ctx, clipProgressFramed); err != nil {
		return stage.Outcome{}, err
	}

	// Burned captions are rendered from a workspace copy of the SRT.
	base := "clip_" + job.ID
	cues := captions.BuildCues(transcript.Window(transcript.Words(segments), candidate.Start, candidate.End), h.settings.WordsPerCue)
	burn := ""
	if opts.BurnCaptions && len(cues) > 0 {
		burn = ws.Path("captions.srt")
		if _, err := captions.WriteSRT(burn, cues); err != nil {
			return stage.Outcome{}, services.Wrap(services.ErrExternalTool, "captions", "write srt", "", err)
		}
	}

	// Encode
	output := ws.Output(filepath.Join(h.settings.OutputDir, base+".mp4"))
	req := ffmpeg.ClipRequest{
		Source:    source,
		Output:    output,
		Start:     candidate.Start,
		Duration:  duration,
		Geometry:  framing.Geometry{SourceWidth: info.Width, SourceHeight: info.Height},
		Path:      path,
		HasAudio:  info.HasAudio,
		Subtitles: burn,
	}
	if err := h.deps.Encoder.EncodeClip(ctx, req); err != nil {
		return stage.Outcome{}, err
	}
	if err := reporter.SetProgress(ctx, clipProgressEncoded); err != nil {
		return stage.Outcome{}, err
	}

	// Captions
	cueCount := 0
	if len(cues) > 0 {
		srtPath := ws.Output(filepath.Join(h.settings.OutputDir, base+".srt"))
		cueCount, err = captions.WriteSRT(srtPath, cues)
		if err != nil {
			return stage.Outcome{}, services.Wrap(services.ErrExternalTool, "captions", "write srt", "", err)
		}
	}
	if err := reporter.SetProgress(ctx, clipProgressCaptioned); err != nil {
		return stage.Outcome{}, err
	}

	// Score
	outcome := stage.Outcome{OutputRef: output}
	if h.deps.Scorer != nil {
		breakdown := h.deps.Scorer.Score(ctx, output)
		if breakdown.Neutral {
			logger.Warn("virality score unavailable",
				logging.Float64("neutral_score", breakdown.Total),
				logging.String(logging.FieldEventType, "clip_score_unavailable"),
			)
		} else {
			total := breakdown.Total
			outcome.Score = &total
		}
	}
	ws.Commit()
	logger.Info("clip rendered",
		logging.String("output", output),
		logging.Int("caption_cues", cueCount),
		logging.Bool("static_crop", path.IsStatic()),
		logging.String(logging.FieldEventType, "clip_rendered"),
	)
	return outcome, nil
}

func (h *ClipHandler) options(job *queue.Job) queue.ClipOptions {
	if job.ClipOptions != nil {
		return *job.ClipOptions
	}
	if h.settings.Defaults.MaxClips > 0 {
		return h.settings.Defaults
	}
	return queue.DefaultClipOptions()
}

func (h *ClipHandler) selectCandidate(info media.Info, segments []transcript.Segment, opts queue.ClipOptions) (clipselect.Candidate, error) {
	if info.Duration < opts.MinDuration {
		return clipselect.TooShort(info.Duration), nil
	}
	points := engagement.Analyze(info.Duration, info.HasAudio, segments)
	candidates, err := clipselect.Select(points, info.Duration, clipselect.FromClipOptions(opts))
	if err != nil {
		return clipselect.Candidate{}, err
	}
	if len(candidates) == 0 {
		return clipselect.Candidate{}, services.Wrap(services.ErrNotFound, "select", "choose clip", "no clip window found", nil)
	}
	return candidates[0], nil
}
