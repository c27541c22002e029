package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode describes how progress output should be rendered.
type OutputMode int

const (
	// ModeTUI renders the phase table with bubbletea.
	ModeTUI OutputMode = iota
	// ModePlain logs phases as they happen.
	ModePlain
	// ModeJSON writes a JSON summary once generation completes.
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeJSON:
		return "json"
	default:
		return "plain"
	}
}

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress || !IsTerminal(out) {
		return ModePlain
	}
	return ModeTUI
}

// IsTerminal reports whether out is an interactive terminal that supports
// cursor control.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return false
		}
	}
	return true
}
