// Package textutil provides text helpers shared by the analysis and
// generation code: Unicode-aware case folding for keyword matching, rune-safe
// truncation, title casing, and filename sanitization.
package textutil
