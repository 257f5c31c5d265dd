// Package media holds the probe summary shared by the pipelines and the
// virality scorer. The ffprobe and ffmpeg subpackages wrap the external
// tools.
package media

// Info summarizes a probed media file.
type Info struct {
	Duration float64
	Width    int
	Height   int
	HasAudio bool
	HasVideo bool
}

// ShortEdge returns the smaller of width and height.
func (i Info) ShortEdge() int {
	if i.Width < i.Height {
		return i.Width
	}
	return i.Height
}
