package whisperx

// Config selects the model, device and language for a transcription run.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" or "pyannote". Pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Language is an ISO 639-1 code. Empty lets WhisperX detect it.
	Language string
	// ScratchDir parents the per-run temp directory. Empty means os.TempDir.
	ScratchDir   string
	FFmpegBinary string
}

const (
	DefaultModel      = "large-v3"
	UVXCommand        = "uvx"
	VADMethodSilero   = "silero"
	VADMethodPyannote = "pyannote"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"
)

// tuning holds the fixed whisperx flags; sentence segments and a small batch
// keep memory flat on CPU hosts.
var tuning = []string{
	"--batch_size", "4",
	"--output_format", "json",
	"--segment_resolution", "sentence",
	"--chunk_size", "15",
	"--beam_size", "5",
}

// device returns the --device flags for the configured hardware.
func (c Config) device() []string {
	if c.CUDAEnabled {
		return []string{"--device", "cuda"}
	}
	return []string{"--device", "cpu", "--compute_type", "float32"}
}

// indexes returns the package index flags uvx resolves torch from.
func (c Config) indexes() []string {
	if c.CUDAEnabled {
		return []string{"--index-url", CUDAIndexURL, "--extra-index-url", PypiIndexURL}
	}
	return []string{"--index-url", PypiIndexURL}
}
