package config

const (
	defaultConfigPath        = "~/.config/shortforge/config.toml"
	defaultWorkDir           = "~/.local/share/shortforge/work"
	defaultOutputDir         = "~/shortforge/output"
	defaultDataDir           = "~/.local/share/shortforge"
	defaultLogDir            = "~/.local/share/shortforge/logs"
	defaultEnvFile           = "~/.config/shortforge/.env"
	defaultAPIBind           = "127.0.0.1:7490"
	defaultClipMinDuration   = 15
	defaultClipMaxDuration   = 60
	defaultClipMaxClips      = 3
	defaultWordsPerCue       = 4
	defaultVoice             = "en-US-ChristopherNeural"
	defaultMaxFootage        = 5
	defaultSegmentSeconds    = 4
	defaultGenerateWidth     = 1080
	defaultGenerateHeight    = 1920
	defaultGenerateFPS       = 24
	defaultDownloadBinary    = "yt-dlp"
	defaultDownloadFormat    = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultDownloadAttempts  = 3
	defaultDownloadMinWait   = 4
	defaultDownloadMaxWait   = 10
	defaultWhisperXModel     = "large-v3"
	defaultWhisperXVADMethod = "silero"
	defaultWhisperXLanguage  = "en"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/shortforge/shortforge"
	defaultLLMTitle          = "shortforge"
	defaultLLMTimeoutSeconds = 60
	defaultStockBaseURL      = "https://api.pexels.com"
	defaultStockPerPage      = 5
	defaultStockOrientation  = "portrait"
	defaultStockTimeout      = 30
	defaultTTSBinary         = "edge-tts"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultEncodingPreset    = "veryfast"
	defaultEncodingCRF       = 23
	defaultAudioBitrate      = "128k"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultReconcilePending  = true
	defaultClipBurnCaptions  = true
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			EnvFile:   defaultEnvFile,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Workflow: Workflow{
			ReconcilePending: defaultReconcilePending,
		},
		Clip: Clip{
			MinDuration:  defaultClipMinDuration,
			MaxDuration:  defaultClipMaxDuration,
			MaxClips:     defaultClipMaxClips,
			BurnCaptions: defaultClipBurnCaptions,
			WordsPerCue:  defaultWordsPerCue,
		},
		Generate: Generate{
			Voice:          defaultVoice,
			MaxFootage:     defaultMaxFootage,
			SegmentSeconds: defaultSegmentSeconds,
			Width:          defaultGenerateWidth,
			Height:         defaultGenerateHeight,
			FPS:            defaultGenerateFPS,
		},
		Download: Download{
			Binary:         defaultDownloadBinary,
			Format:         defaultDownloadFormat,
			Attempts:       defaultDownloadAttempts,
			MinWaitSeconds: defaultDownloadMinWait,
			MaxWaitSeconds: defaultDownloadMaxWait,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
			Language:  defaultWhisperXLanguage,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Stock: Stock{
			BaseURL:        defaultStockBaseURL,
			PerPage:        defaultStockPerPage,
			Orientation:    defaultStockOrientation,
			TimeoutSeconds: defaultStockTimeout,
		},
		TTS: TTS{
			Binary: defaultTTSBinary,
		},
		Encoding: Encoding{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Preset:        defaultEncodingPreset,
			CRF:           defaultEncodingCRF,
			AudioBitrate:  defaultAudioBitrate,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobCompleted:   true,
			JobFailed:      true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
