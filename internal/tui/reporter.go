package tui

import (
	"fmt"
	"path"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"profilegen/internal/download"
	"profilegen/internal/profile"
)

// Phase table columns.
const (
	ColPhase    = "PHASE"
	ColStatus   = "STATUS"
	ColProgress = "PROGRESS"
	ColDetail   = "DETAIL"
)

// PhaseColumns is the column layout of the installation progress table.
var PhaseColumns = []Column{
	{Header: ColPhase, Width: 10},
	{Header: ColStatus, Width: 11},
	{Header: ColProgress, Width: 11},
	{Header: ColDetail, Width: 40},
}

// NewPhaseModel builds a progress model with one pending row per phase.
func NewPhaseModel(title string) ProgressModel {
	m := NewProgressModel(title, PhaseColumns)
	for _, p := range profile.Phases() {
		m.AddRow(string(p), []string{string(p), StatusPending, "-", ""})
	}
	return m
}

type phaseCount struct {
	total  int
	done   int
	failed int
}

func (c phaseCount) progress() string {
	if c.total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", c.done, c.total)
}

// PhaseReporter adapts bubbletea message sending to profile.ProgressReporter.
type PhaseReporter struct {
	send   func(tea.Msg)
	mu     sync.Mutex
	counts map[profile.Phase]*phaseCount
}

// NewPhaseReporter constructs a reporter that forwards updates through send.
func NewPhaseReporter(send func(tea.Msg)) *PhaseReporter {
	return &PhaseReporter{send: send, counts: make(map[profile.Phase]*phaseCount)}
}

// PhaseStart implements profile.ProgressReporter.
func (r *PhaseReporter) PhaseStart(p profile.Phase, total int) {
	r.mu.Lock()
	c := &phaseCount{total: total}
	r.counts[p] = c
	progress := c.progress()
	r.mu.Unlock()

	r.send(RowUpdateMsg{Key: string(p), Fields: map[string]string{
		ColStatus:   activeStatus(p),
		ColProgress: progress,
		ColDetail:   "",
	}})
}

// ItemComplete implements profile.ProgressReporter.
func (r *PhaseReporter) ItemComplete(p profile.Phase, item download.Item, err error) {
	r.mu.Lock()
	c, ok := r.counts[p]
	if !ok {
		c = &phaseCount{}
		r.counts[p] = c
	}
	c.done++
	if err != nil {
		c.failed++
	}
	progress := c.progress()
	// Natives are unpacked once the last bundle lands.
	extracting := p == profile.PhaseNatives && c.done == c.total && c.failed == 0
	r.mu.Unlock()

	detail := path.Base(item.URL)
	if err != nil {
		detail = err.Error()
	}
	fields := map[string]string{
		ColProgress: progress,
		ColDetail:   detail,
	}
	if extracting {
		fields[ColStatus] = StatusExtracting
	}
	r.send(RowUpdateMsg{Key: string(p), Fields: fields})
}

// PhaseComplete implements profile.ProgressReporter.
func (r *PhaseReporter) PhaseComplete(p profile.Phase, err error) {
	r.mu.Lock()
	c := r.counts[p]
	r.mu.Unlock()

	fields := map[string]string{ColStatus: StatusDone}
	switch {
	case err != nil:
		fields[ColStatus] = StatusError
		fields[ColDetail] = err.Error()
	case c == nil || (c.total == 0 && c.done == 0):
		fields[ColStatus] = StatusSkipped
	default:
		fields[ColDetail] = ""
	}
	r.send(RowUpdateMsg{Key: string(p), Fields: fields})
}

func activeStatus(p profile.Phase) string {
	switch p {
	case profile.PhaseProfile:
		return StatusWriting
	default:
		return StatusDownloading
	}
}

// StatusReporter renders phase progress on a single spinner line.
type StatusReporter struct {
	sw     *StatusWriter
	mu     sync.Mutex
	phase  profile.Phase
	counts phaseCount
}

// NewStatusReporter wraps sw as a profile.ProgressReporter.
func NewStatusReporter(sw *StatusWriter) *StatusReporter {
	return &StatusReporter{sw: sw}
}

// PhaseStart implements profile.ProgressReporter.
func (r *StatusReporter) PhaseStart(p profile.Phase, total int) {
	r.mu.Lock()
	r.phase = p
	r.counts = phaseCount{total: total}
	r.mu.Unlock()
	r.sw.Update(fmt.Sprintf("%s %s...", activeStatus(p), p))
}

// ItemComplete implements profile.ProgressReporter.
func (r *StatusReporter) ItemComplete(p profile.Phase, _ download.Item, _ error) {
	r.mu.Lock()
	if p != r.phase {
		r.mu.Unlock()
		return
	}
	r.counts.done++
	status := activeStatus(p)
	if p == profile.PhaseNatives && r.counts.done == r.counts.total {
		status = StatusExtracting
	}
	msg := fmt.Sprintf("%s %s %s", status, p, r.counts.progress())
	r.mu.Unlock()
	r.sw.Set(msg)
}

// PhaseComplete implements profile.ProgressReporter.
func (r *StatusReporter) PhaseComplete(profile.Phase, error) {}
