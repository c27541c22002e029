package tui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"profilegen/internal/download"
	"profilegen/internal/profile"
)

func TestRowUpdateMsg(t *testing.T) {
	m := NewProgressModel("test", []Column{
		{Header: "PHASE", Width: 8},
		{Header: "STATUS", Width: 10},
		{Header: "DETAIL", Width: 10},
	})
	m.AddRow("assets", []string{"assets", StatusPending, ""})
	m.AddRow("client", []string{"client", StatusPending, ""})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "assets",
		Fields: map[string]string{"STATUS": StatusDownloading, "DETAIL": "ab12"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != StatusDownloading {
		t.Errorf("expected STATUS=downloading, got %q", m.rows[0].Fields[1])
	}
	if m.rows[0].Fields[2] != "ab12" {
		t.Errorf("expected DETAIL=ab12, got %q", m.rows[0].Fields[2])
	}
	if m.rows[1].Fields[1] != StatusPending {
		t.Errorf("expected row 2 STATUS=pending, got %q", m.rows[1].Fields[1])
	}
}

func TestRowUpdateMsg_UnknownKey(t *testing.T) {
	m := NewProgressModel("test", []Column{{Header: "STATUS", Width: 10}})
	m.AddRow("assets", []string{StatusPending})

	updated, _ := m.Update(RowUpdateMsg{Key: "bogus", Fields: map[string]string{"STATUS": StatusDone}})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[0] != StatusPending {
		t.Errorf("expected STATUS unchanged, got %q", m.rows[0].Fields[0])
	}
}

func TestWorkDoneMsg(t *testing.T) {
	m := NewProgressModel("test", []Column{{Header: "STATUS", Width: 10}})

	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("expected Done() to be true after WorkDoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	m := NewProgressModel("test", []Column{{Header: "STATUS", Width: 10}})

	updated, cmd := m.Update(ErrorMsg{Err: errors.New("boom")})
	m = updated.(ProgressModel)

	if !m.Done() || m.Err() == nil {
		t.Fatal("expected model to finish with an error")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("expected error in view, got %q", m.View())
	}
}

func TestCtrlCInterrupts(t *testing.T) {
	m := NewProgressModel("test", []Column{{Header: "STATUS", Width: 10}})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !errors.Is(m.Err(), ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", m.Err())
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := NewProgressModel("test", []Column{{Header: "STATUS", Width: 10}})

	updated, cmd := m.Update(tickMsg{})
	m = updated.(ProgressModel)
	if m.tick != 1 || cmd == nil {
		t.Fatalf("expected tick to advance and reschedule, tick=%d", m.tick)
	}

	updated, _ = m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)
	if _, cmd = m.Update(tickMsg{}); cmd != nil {
		t.Error("expected no tick command after done")
	}
}

func TestPhaseModelView(t *testing.T) {
	m := NewPhaseModel("profile main (1.12.2)")
	view := m.View()

	for _, want := range []string{"profile main (1.12.2)", ColPhase, ColStatus, ColProgress, "libraries", "natives", StatusPending, "0/6 phases"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}

	updated, _ := m.Update(WorkDoneMsg{})
	if strings.Contains(updated.View(), "phases") {
		t.Error("expected footer to disappear once done")
	}
}

type msgSink struct {
	mu   sync.Mutex
	msgs []RowUpdateMsg
}

func (s *msgSink) send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := msg.(RowUpdateMsg); ok {
		s.msgs = append(s.msgs, m)
	}
}

func TestPhaseReporterDrivesRows(t *testing.T) {
	sink := &msgSink{}
	rep := NewPhaseReporter(sink.send)
	m := NewPhaseModel("")

	rep.PhaseStart(profile.PhaseLibraries, 2)
	rep.ItemComplete(profile.PhaseLibraries, download.Item{URL: "https://h/a/guava-21.0.jar"}, nil)
	rep.ItemComplete(profile.PhaseLibraries, download.Item{URL: "https://h/b.jar"}, nil)
	rep.PhaseComplete(profile.PhaseLibraries, nil)
	rep.PhaseStart(profile.PhaseLoader, 0)
	rep.PhaseComplete(profile.PhaseLoader, nil)
	rep.PhaseStart(profile.PhaseNatives, 1)
	rep.PhaseComplete(profile.PhaseNatives, errors.New("extract natives: bad"))

	for _, msg := range sink.msgs {
		updated, _ := m.Update(msg)
		m = updated.(ProgressModel)
	}

	libs := m.rows[m.rowIndex[string(profile.PhaseLibraries)]]
	if libs.Fields[1] != StatusDone || libs.Fields[2] != "2/2" {
		t.Errorf("unexpected libraries row %v", libs.Fields)
	}
	loader := m.rows[m.rowIndex[string(profile.PhaseLoader)]]
	if loader.Fields[1] != StatusSkipped {
		t.Errorf("expected loader skipped, got %v", loader.Fields)
	}
	nat := m.rows[m.rowIndex[string(profile.PhaseNatives)]]
	if nat.Fields[1] != StatusError || !strings.Contains(nat.Fields[3], "bad") {
		t.Errorf("expected natives error, got %v", nat.Fields)
	}

	finished, total := m.progressCounts()
	if finished != 3 || total != len(profile.Phases()) {
		t.Errorf("expected 3/%d finished, got %d/%d", len(profile.Phases()), finished, total)
	}
}

func TestPhaseReporterDetailShowsFileName(t *testing.T) {
	sink := &msgSink{}
	rep := NewPhaseReporter(sink.send)
	rep.PhaseStart(profile.PhaseClient, 1)
	rep.ItemComplete(profile.PhaseClient, download.Item{URL: "https://h/x/client.jar"}, nil)

	last := sink.msgs[len(sink.msgs)-1]
	if last.Fields[ColDetail] != "client.jar" || last.Fields[ColProgress] != "1/1" {
		t.Errorf("unexpected update %v", last.Fields)
	}
}

func TestStatusReporterUpdatesMessage(t *testing.T) {
	var buf bytes.Buffer
	sw := &StatusWriter{w: &buf, done: make(chan struct{})}
	rep := NewStatusReporter(sw)

	rep.PhaseStart(profile.PhaseAssets, 3)
	rep.ItemComplete(profile.PhaseAssets, download.Item{}, nil)
	if sw.message != "downloading assets 1/3" {
		t.Errorf("unexpected status message %q", sw.message)
	}
	rep.ItemComplete(profile.PhaseClient, download.Item{}, nil)
	if sw.message != "downloading assets 1/3" {
		t.Errorf("item from another phase changed message to %q", sw.message)
	}
}

func TestNativesPhaseSwitchesToExtracting(t *testing.T) {
	var sink msgSink
	rep := NewPhaseReporter(sink.send)
	rep.PhaseStart(profile.PhaseNatives, 2)
	rep.ItemComplete(profile.PhaseNatives, download.Item{URL: "https://h/a-natives-linux.jar"}, nil)
	if _, ok := sink.msgs[len(sink.msgs)-1].Fields[ColStatus]; ok {
		t.Fatalf("status changed before the last bundle: %v", sink.msgs[len(sink.msgs)-1].Fields)
	}
	rep.ItemComplete(profile.PhaseNatives, download.Item{URL: "https://h/b-natives-linux.jar"}, nil)
	if got := sink.msgs[len(sink.msgs)-1].Fields[ColStatus]; got != StatusExtracting {
		t.Errorf("status = %q, want %q", got, StatusExtracting)
	}

	var buf bytes.Buffer
	sw := &StatusWriter{w: &buf, done: make(chan struct{})}
	status := NewStatusReporter(sw)
	status.PhaseStart(profile.PhaseNatives, 1)
	status.ItemComplete(profile.PhaseNatives, download.Item{}, nil)
	if sw.message != "extracting natives 1/1" {
		t.Errorf("unexpected status message %q", sw.message)
	}
}

func TestStatusWriterRender(t *testing.T) {
	start := time.Now()
	sw := &StatusWriter{message: "downloading libraries", since: start, done: make(chan struct{})}

	first := sw.render(start.Add(1500 * time.Millisecond))
	if !strings.HasPrefix(first, clearLine+spinnerFrames[0]) {
		t.Errorf("first frame %q", first)
	}
	if !strings.HasSuffix(first, "downloading libraries (1.5s)") {
		t.Errorf("first frame %q", first)
	}
	second := sw.render(start.Add(75 * time.Second))
	if !strings.Contains(second, spinnerFrames[1]) || !strings.HasSuffix(second, "(1m15s)") {
		t.Errorf("second frame %q", second)
	}

	var buf bytes.Buffer
	sw.w = &buf
	sw.Stop()
	sw.Stop()
	if buf.String() != clearLine {
		t.Errorf("Stop wrote %q", buf.String())
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{" hello ", "hello"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.input); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abcd", 3, "abc"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if DetectMode(&buf, false, true) != ModeJSON {
		t.Error("expected json mode")
	}
	if DetectMode(&buf, false, false) != ModePlain {
		t.Error("expected plain mode for non-terminal writer")
	}
	if ModeTUI.String() != "tui" {
		t.Errorf("unexpected mode name %q", ModeTUI.String())
	}
}
