// Package language normalizes transcription language settings to the ISO
// 639-1 codes WhisperX accepts.
package language
