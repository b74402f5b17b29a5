package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trackplay/scheduler"
)

// Monitor is a read/command-only bubbletea Model for the scheduler: it has
// no piano roll or pad grid to draw, since editing and rendering the song
// itself are out of scope (spec.md §1) — it just shows the transport
// position and lets a handful of Transport Commands be driven from a
// terminal, the same "one Model wraps one Manager" shape as the teacher's
// tui.Model wrapping sequencer.Manager.
type Monitor struct {
	sched    *scheduler.Scheduler
	quitting bool
}

// UpdateMsg mirrors the teacher's tui.UpdateMsg: a Collect pass or command
// changed observable state, so View should redraw.
type UpdateMsg struct{}

// NewMonitor creates a Monitor over a running Scheduler.
func NewMonitor(sched *scheduler.Scheduler) Monitor {
	return Monitor{sched: sched}
}

// ListenForUpdates mirrors the teacher's tui.ListenForUpdates, adapted to
// Scheduler.Updates() instead of Manager.UpdateChan.
func ListenForUpdates(sched *scheduler.Scheduler) tea.Cmd {
	return func() tea.Msg {
		<-sched.Updates()
		return UpdateMsg{}
	}
}

func (m Monitor) Init() tea.Cmd {
	return ListenForUpdates(m.sched)
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.sched.Stop()
			return m, tea.Quit

		case "p":
			if m.sched.IsPlaying() {
				m.sched.Stop()
			} else {
				m.sched.Start()
			}

		case "l":
			m.sched.SetLooping(!m.sched.IsLooping())

		case "r":
			m.sched.SetRecording(!m.sched.IsRecording())

		case " ":
			m.sched.SetMetronomeEnabled(!m.sched.IsMetronomeEnabled())

		case "<", ",":
			m.sched.GotoPreviousPattern()

		case ">", ".":
			m.sched.GotoNextPattern()
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.sched)
	}

	return m, nil
}

func (m Monitor) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle().Faint(true)

	playState := "STOP"
	if m.sched.IsPlaying() {
		playState = "PLAY"
	}

	flags := ""
	if m.sched.IsLooping() {
		flags += " loop"
	}
	if m.sched.IsRecording() {
		flags += " rec"
	}
	if m.sched.IsMetronomeEnabled() {
		flags += " click"
	}

	pos := m.sched.GetPosition()
	header := headerStyle.Render(fmt.Sprintf("trackplay  %s  pattern:%d  step:%02d/%02d%s",
		playState, pos.ActivePattern, pos.CurrentStep, m.sched.AmountOfSteps(), flags))

	help := dimStyle.Render("p:play/stop  l:loop  r:record  space:click  </>: pattern  q:quit")

	return "\n" + header + "\n\n" + help + "\n"
}
