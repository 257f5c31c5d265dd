package framing

import (
	"fmt"
	"math"
)

// Geometry describes the source frame the crop is cut from.
type Geometry struct {
	SourceWidth  int
	SourceHeight int
}

// TargetWidth is the 9:16 crop width: height*9/16 rounded down to an even
// number and capped at the source width.
func (g Geometry) TargetWidth() int {
	if g.SourceWidth <= 0 || g.SourceHeight <= 0 {
		return 0
	}
	tw := g.SourceHeight * 9 / 16
	tw -= tw % 2
	if tw > g.SourceWidth {
		tw = g.SourceWidth - g.SourceWidth%2
	}
	return tw
}

// TargetHeight is the crop height, the source height rounded down to even.
func (g Geometry) TargetHeight() int {
	return g.SourceHeight - g.SourceHeight%2
}

// Window returns the left edge of the crop for a center ratio. The window is
// shifted, never shrunk, so that [x1, x1+TargetWidth] stays inside the frame.
func (g Geometry) Window(ratio float64) int {
	tw := g.TargetWidth()
	if tw <= 0 {
		return 0
	}
	center := ClampRatio(ratio) * float64(g.SourceWidth)
	x1 := int(math.Round(center - float64(tw)/2))
	if x1 < 0 {
		x1 = 0
	}
	if maxX := g.SourceWidth - tw; x1 > maxX {
		x1 = maxX
	}
	return x1
}

// CropFilter renders an ffmpeg crop filter following the path. The x offset
// is clip(r(t)*iw-ow/2, 0, iw-ow), the same clamp-and-shift as Window.
func (g Geometry) CropFilter(path Path) string {
	return fmt.Sprintf("crop=w=%d:h=%d:x='clip((%s)*iw-ow/2,0,iw-ow)':y=0",
		g.TargetWidth(), g.TargetHeight(), path.Expression())
}
