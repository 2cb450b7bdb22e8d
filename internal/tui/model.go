// Package tui is a live terminal dashboard for long scrape runs. It
// shows batch progress, the last finished PIN, and host load while the
// pipeline runs in the background.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/darionhq/resultgrab/internal/errors"
	"github.com/darionhq/resultgrab/internal/orchestration"
	"github.com/darionhq/resultgrab/internal/sysmon"
)

// programRef is a shared reference to the tea.Program. Bubbletea copies
// the model on every Update, so bridge goroutines need a pointer that
// survives copies to Send into the program.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// Reporter forwards orchestrator progress into the dashboard.
type Reporter struct {
	ref *programRef
}

var _ orchestration.ProgressReporter = (*Reporter)(nil)

// Report sends one ProgressMsg per completed record.
func (r *Reporter) Report(completed, total int, lastPIN string) {
	r.ref.Send(ProgressMsg{Completed: completed, Total: total, LastPIN: lastPIN})
}

// ProgressMsg carries one orchestrator progress update.
type ProgressMsg struct {
	Completed int
	Total     int
	LastPIN   string
}

// RunDoneMsg signals that the pipeline finished, with its exit code.
type RunDoneMsg struct {
	ExitCode int
	Err      error
}

// TickMsg drives periodic host-load sampling.
type TickMsg time.Time

// SysStatsMsg carries one sysmon snapshot.
type SysStatsMsg sysmon.Stats

// KeyMap holds the dashboard key bindings.
type KeyMap struct {
	Quit key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	bar     progress.Model
	keymap  KeyMap
	version string

	cancel context.CancelFunc

	completed int
	total     int
	lastPIN   string
	sys       sysmon.Stats
	start     time.Time

	width    int
	done     bool
	exitCode int
	runErr   error
}

// NewModel creates a dashboard for a batch of total records. cancel
// stops the underlying pipeline when the user quits early.
func NewModel(total int, cancel context.CancelFunc, version string) Model {
	return Model{
		bar:      progress.New(progress.WithDefaultGradient()),
		keymap:   DefaultKeyMap(),
		version:  version,
		cancel:   cancel,
		total:    total,
		start:    time.Now(),
		exitCode: apperrors.ExitSuccess,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.Quit) {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 12
		return m, nil

	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		m.lastPIN = msg.LastPIN
		return m, nil

	case RunDoneMsg:
		m.done = true
		m.exitCode = msg.ExitCode
		m.runErr = msg.Err
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.sys = sysmon.Stats(msg)
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render("resultgrab " + m.version)

	bar := m.bar.ViewAs(m.fraction())
	counts := fmt.Sprintf("%d/%d", m.completed, m.total)
	last := ""
	if m.lastPIN != "" {
		last = labelStyle.Render("last ") + pinStyle.Render(m.lastPIN)
	}
	progressLine := lipgloss.JoinHorizontal(lipgloss.Center, bar, "  ", counts, "  ", last)

	statsLine := fmt.Sprintf("%s %5.1f%%   %s %5.1f%%   %s %s",
		labelStyle.Render("cpu"), m.sys.CPUPercent,
		labelStyle.Render("mem"), m.sys.MemPercent,
		labelStyle.Render("elapsed"), time.Since(m.start).Round(time.Second))

	status := dimStyle.Render("q to cancel")
	if m.done {
		if m.runErr != nil {
			status = errStyle.Render("failed: " + m.runErr.Error())
		} else {
			status = okStyle.Render("done")
		}
	}

	body := panelStyle.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, progressLine, statsLine, status))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m Model) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.completed) / float64(m.total)
}

// Run drives the dashboard while start executes the pipeline in the
// background. start receives a ProgressReporter wired to the dashboard
// and must return the pipeline's exit code. Run returns that exit code,
// or ExitErrorCanceled when the user quit before completion. It does not
// return until start has finished, so anything start writes (buffers,
// artifact files) is safe to touch once Run comes back, even on an
// early quit.
func Run(ctx context.Context, total int, version string, start func(ctx context.Context, reporter orchestration.ProgressReporter) (int, error), opts ...tea.ProgramOption) int {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	model := NewModel(total, cancel, version)

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(model, opts...)
	ref.SetProgram(p)

	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		code, err := start(runCtx, &Reporter{ref: ref})
		ref.Send(RunDoneMsg{ExitCode: code, Err: err})
	}()

	finalModel, err := p.Run()
	// On an early quit the pipeline is still draining; stop it and wait so
	// nothing writes behind the caller's back after we return.
	cancel()
	<-pipelineDone

	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		if !m.done {
			return apperrors.ExitErrorCanceled
		}
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample())
	}
}
