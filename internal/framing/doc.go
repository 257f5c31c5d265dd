// Package framing builds the time-varying horizontal crop that keeps a
// detected face centered in a 9:16 window.
//
// Track samples the face-center ratio every half second across a clip (plus
// one sample just before the end), Path interpolates linearly between samples,
// and Geometry converts a ratio into a crop window that never leaves the
// source frame. A missing face locator, a frame that cannot be extracted, and
// a frame with no face all produce the neutral ratio 0.5, so the engine
// degrades to a static centered crop.
package framing
