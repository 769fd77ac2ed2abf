package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"onboarding-videos/internal/generate"
)

var (
	progressSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	progressMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	progressErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	progressOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

type progressEventMsg generate.Event

type progressDoneMsg struct{}

// progressModel renders one status line under the scrolling driver output.
type progressModel struct {
	spinner  spinner.Model
	total    int
	finished int
	failed   int
	current  generate.Event
	started  bool
	quitting bool
}

func newProgressModel(total int) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = progressSpinnerStyle
	return progressModel{spinner: s, total: total}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressEventMsg:
		ev := generate.Event(msg)
		m.current = ev
		m.started = true
		switch ev.Phase {
		case generate.PhaseSaved, generate.PhaseSkipped:
			m.finished++
		case generate.PhaseFailed:
			m.finished++
			m.failed++
		}
		return m, nil
	case progressDoneMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}
	counts := progressMutedStyle.Render(fmt.Sprintf("[%d/%d]", m.finished, m.total))
	if m.failed > 0 {
		counts += " " + progressErrorStyle.Render(fmt.Sprintf("%d failed", m.failed))
	}
	if !m.started {
		return fmt.Sprintf("%s %s starting...\n", m.spinner.View(), counts)
	}
	return fmt.Sprintf("%s %s step %d %s  %s\n", m.spinner.View(), counts, m.current.StepID, truncateTitle(m.current.Title, 40), phaseLabel(m.current))
}

func phaseLabel(ev generate.Event) string {
	switch ev.Phase {
	case generate.PhaseWaiting:
		return fmt.Sprintf("waiting %ds (poll %d)", int(ev.Elapsed.Seconds()), ev.Attempt)
	case generate.PhaseSaved:
		return progressOKStyle.Render("saved")
	case generate.PhaseSkipped:
		return progressMutedStyle.Render("skipped")
	case generate.PhaseFailed:
		return progressErrorStyle.Render("failed")
	default:
		return ev.Phase
	}
}

func truncateTitle(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) > max-3 {
		r = r[:max-3]
	}
	return string(r) + "..."
}

// lineWriter forwards complete lines to println so they scroll above the
// live status line.
type lineWriter struct {
	println func(args ...any)
	buf     []byte
}

func (w *lineWriter) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.println(strings.TrimRight(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	return len(b), nil
}

func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.println(string(w.buf))
		w.buf = nil
	}
}

type progressView struct {
	program  *tea.Program
	writer   *lineWriter
	fallback io.Writer
	exited   chan struct{}
	err      error
}

// startProgressView runs the status line on its own goroutine. Input and
// signal handling stay with the caller so SIGINT still cancels generation.
func startProgressView(total int) *progressView {
	p := tea.NewProgram(newProgressModel(total), tea.WithInput(nil), tea.WithoutSignalHandler())
	v := newProgressView(p, os.Stdout)
	go func() {
		_, err := p.Run()
		v.err = err
		close(v.exited)
	}()
	return v
}

func newProgressView(p *tea.Program, fallback io.Writer) *progressView {
	v := &progressView{
		program:  p,
		fallback: fallback,
		exited:   make(chan struct{}),
	}
	v.writer = &lineWriter{println: v.println}
	return v
}

// println hands a line to the program. Once the program has exited, lines go
// straight to the fallback writer instead.
func (v *progressView) println(args ...any) {
	select {
	case <-v.exited:
		fmt.Fprintln(v.fallback, args...)
		return
	default:
	}
	sent := make(chan struct{})
	go func() {
		v.program.Println(args...)
		close(sent)
	}()
	select {
	case <-sent:
	case <-v.exited:
		select {
		case <-sent:
		default:
			fmt.Fprintln(v.fallback, args...)
		}
	}
}

func (v *progressView) notify(ev generate.Event) {
	select {
	case <-v.exited:
		return
	default:
	}
	v.program.Send(progressEventMsg(ev))
}

func (v *progressView) stop(logger *slog.Logger) {
	if v == nil {
		return
	}
	v.writer.Flush()
	v.program.Send(progressDoneMsg{})
	<-v.exited
	if v.err != nil {
		logger.Warn("progress view failed", "error", v.err)
	}
}
