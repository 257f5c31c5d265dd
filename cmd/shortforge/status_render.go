package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// statusStyles holds the bracket label and ANSI color for each kind.
var statusStyles = [...]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

func (k statusKind) style() (label, color string) {
	if k < 0 || int(k) >= len(statusStyles) {
		k = statusInfo
	}
	s := statusStyles[k]
	return s.label, s.color
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

// renderStatusLine prints "  Label:   [KIND] message" with labels padded to
// a shared column.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	name, color := kind.style()
	line := fmt.Sprintf("  %-24s [%s] %s", label+":", name, message)
	return paint(strings.TrimRight(line, " "), color, colorize)
}

func readyKind(ready bool) statusKind {
	if ready {
		return statusOK
	}
	return statusError
}

func renderSectionHeader(title string, colorize bool) []string {
	_, color := statusInfo.style()
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, color, colorize),
		paint(strings.Repeat("-", len(heading)), color, colorize),
	}
}

// shouldColorize reports whether w is a terminal, including Cygwin ptys.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
