package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// infoAttrLimit caps the detail lines printed under records at info and
// above. Debug records show every field.
const infoAttrLimit = 8

// prettyHandler writes a one-line header per record followed by indented
// "- key: value" detail lines:
//
//	2026-01-02 15:04:05 INFO [workflow] Job 0123abcd (render) – clip rendered
//	    - output: /out/clip.mp4
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: new(sync.Mutex), writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

type kv struct {
	key   string
	value slog.Value
}

// header carries the fields promoted out of the detail list.
type header struct {
	component string
	jobID     string
	stage     string
}

func (hd *header) take(field kv) bool {
	switch field.key {
	case FieldComponent:
		hd.component = attrString(field.value)
	case FieldJobID:
		hd.jobID = attrString(field.value)
	case FieldStage:
		hd.stage = attrString(field.value)
	default:
		return false
	}
	return true
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	var fields []kv
	for _, attr := range h.attrs {
		fields = flattenAttr(fields, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields = flattenAttr(fields, h.groups, attr)
		return true
	})

	var hd header
	fields = slices.DeleteFunc(dedupeKVsByKey(fields), hd.take)

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.WriteString(formatTimestamp(ts) + " " + levelLabel(record.Level))
	if hd.component != "" {
		fmt.Fprintf(&buf, " [%s]", hd.component)
	}
	if subject := composeSubject(hd.jobID, hd.stage); subject != "" {
		buf.WriteString(" " + subject)
	}
	buf.WriteString(" – " + message)
	if src := record.Source(); h.addSource && src != nil && src.File != "" {
		fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
	}
	buf.WriteByte('\n')

	shown := fields
	if record.Level >= slog.LevelInfo && len(shown) > infoAttrLimit {
		shown = shown[:infoAttrLimit]
	}
	for _, field := range shown {
		fmt.Fprintf(&buf, "    - %s: %s\n", field.key, formatValue(field.value))
	}
	switch hidden := len(fields) - len(shown); {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(&buf, "    + %d more fields hidden\n", hidden)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// composeSubject renders "Job 1a2b3c4d (render)" from the short job id and
// stage. Either part may be missing.
func composeSubject(jobID, stage string) string {
	jobID, stage = strings.TrimSpace(jobID), strings.TrimSpace(stage)
	if len(jobID) > 8 {
		jobID = jobID[:8]
	}
	var parts []string
	if jobID != "" {
		parts = append(parts, "Job "+jobID)
	}
	if stage != "" {
		if jobID != "" {
			stage = "(" + stage + ")"
		}
		parts = append(parts, stage)
	}
	return strings.Join(parts, " ")
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Concat(h.attrs, attrs)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

// dedupeKVsByKey keeps the first position of each key with its last value.
func dedupeKVsByKey(fields []kv) []kv {
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		if i, seen := index[field.key]; seen {
			out[i].value = field.value
			continue
		}
		index[field.key] = len(out)
		out = append(out, field)
	}
	return out
}

// flattenAttr appends attr to dst, expanding groups into dotted keys.
func flattenAttr(dst []kv, prefix []string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	path := prefix
	if attr.Key != "" {
		path = append(slices.Clip(prefix), attr.Key)
	}
	if value.Kind() != slog.KindGroup {
		return append(dst, kv{key: strings.Join(path, "."), value: value})
	}
	for _, member := range value.Group() {
		dst = flattenAttr(dst, path, member)
	}
	return dst
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
