package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"profilegen/internal/download"
)

// Phase names a stage of Generate.
type Phase string

const (
	PhaseAssets    Phase = "assets"
	PhaseClient    Phase = "client"
	PhaseLibraries Phase = "libraries"
	PhaseLoader    Phase = "loader"
	PhaseNatives   Phase = "natives"
	PhaseProfile   Phase = "profile"
)

// Phases lists every phase in execution order.
func Phases() []Phase {
	return []Phase{PhaseAssets, PhaseClient, PhaseLibraries, PhaseLoader, PhaseNatives, PhaseProfile}
}

// ProgressReporter receives notifications as Generate moves through its
// phases. ItemComplete may be called from several goroutines at once.
type ProgressReporter interface {
	PhaseStart(phase Phase, total int)
	ItemComplete(phase Phase, item download.Item, err error)
	PhaseComplete(phase Phase, err error)
}

type noopReporter struct{}

func (noopReporter) PhaseStart(Phase, int) {}
func (noopReporter) ItemComplete(Phase, download.Item, error) {}
func (noopReporter) PhaseComplete(Phase, error) {}

func writeJSON(path string, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	buf = append(buf, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
