package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drumseq/debug"
	"go-drumseq/midi"
	"go-drumseq/sequencer"
	"go-drumseq/theme"
	"go-drumseq/widgets"
)

// Error kinds shown in the status line
const (
	KindOutput  ftag.Kind = "output"
	KindEdit    ftag.Kind = "edit"
	KindTrigger ftag.Kind = "trigger"
)

const (
	tempoStep    = 5
	playheadRate = 30 * time.Millisecond
)

// Transport is the part of the clock the UI drives directly.
type Transport interface {
	Resume() error
	Ready() bool
	Tempo() int
	SetTempo(bpm int)
}

// transportKeys are the bindings handleKey serves itself
var transportKeys = widgets.KeySection{
	Title: "transport",
	Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play/stop"},
		{Key: "+ / -", Desc: "tempo up/down"},
		{Key: "c", Desc: "clear current track"},
		{Key: "q", Desc: "quit"},
	},
}

type Model struct {
	Session   *sequencer.Session
	Ctrl      *sequencer.Controller
	Transport Transport
	Theme     *theme.Theme
	Output    string // backend label for the header

	// Ports, if set, reports hot-plug changes of MIDI outputs. Only PortName
	// is tracked when it is not empty.
	Ports    <-chan midi.PortEvent
	PortName string

	grid       *widgets.Grid
	errs       <-chan error
	status     error
	portStatus string
	quitting   bool
}

type tickMsg time.Time

type triggerErrMsg struct{ error }

type PortEventMsg midi.PortEvent

// NewModel builds the UI. errs, if not nil, delivers trigger errors from the
// dispatch goroutine.
func NewModel(session *sequencer.Session, ctrl *sequencer.Controller, tr Transport, th *theme.Theme, errs <-chan error) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Session:   session,
		Ctrl:      ctrl,
		Transport: tr,
		Theme:     th,
		grid:      widgets.NewGrid(session.Tracks, session.OnBeatToggled, th),
		errs:      errs,
	}
}

func tick() tea.Cmd {
	return tea.Tick(playheadRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func ListenForErrors(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errs
		if !ok {
			return nil
		}
		return triggerErrMsg{err}
	}
}

func ListenForPorts(ports <-chan midi.PortEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ports
		if !ok {
			return nil
		}
		return PortEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.errs != nil {
		cmds = append(cmds, ListenForErrors(m.errs))
	}
	if m.Ports != nil {
		cmds = append(cmds, ListenForPorts(m.Ports))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tickMsg:
		m.grid.SetPlayhead(m.Ctrl.Position())
		return m, tick()

	case triggerErrMsg:
		m.status = fault.Wrap(msg.error,
			ftag.With(KindTrigger),
			fmsg.WithDesc("trigger", "A sound failed to play"))
		return m, ListenForErrors(m.errs)

	case PortEventMsg:
		if m.PortName == "" || msg.Name == m.PortName {
			m.portStatus = fmt.Sprintf("%s %s", msg.Name, msg.Type)
		}
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.status = nil

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Ctrl.Stop()
		return m, tea.Quit

	case "p":
		m.status = m.togglePlayback()

	case "+", "=":
		m.Transport.SetTempo(m.Transport.Tempo() + tempoStep)

	case "-", "_":
		m.Transport.SetTempo(m.Transport.Tempo() - tempoStep)

	case "c":
		track, _ := m.grid.Cursor()
		if err := m.Session.ClearTrack(track); err != nil {
			m.status = fault.Wrap(err, ftag.With(KindEdit), fmsg.WithDesc("clear track", "Cannot clear that track"))
		}

	default:
		if err := m.grid.HandleKey(key); err != nil {
			m.status = fault.Wrap(err, ftag.With(KindEdit), fmsg.WithDesc("toggle beat", "Cannot toggle that beat"))
		}
	}

	return m, nil
}

// togglePlayback resumes the output on first use, then starts or stops.
func (m Model) togglePlayback() error {
	if !m.Transport.Ready() {
		if err := m.Transport.Resume(); err != nil {
			debug.Log("tui", "resume failed: %v", err)
			return fault.Wrap(err,
				ftag.With(KindOutput),
				fmsg.WithDesc("resume output", fmt.Sprintf("Could not open the %s output", m.outputLabel())))
		}
	}
	if err := m.Ctrl.Toggle(); err != nil {
		var nerr *sequencer.NotReadyError
		if errors.As(err, &nerr) {
			return fault.Wrap(err, ftag.With(KindOutput), fmsg.WithDesc("start", "Output is not ready, press p to retry"))
		}
		return fault.Wrap(err, fmsg.With("start"))
	}
	return nil
}

// Status returns the error shown in the status line, if any.
func (m Model) Status() error { return m.status }

func (m Model) outputLabel() string {
	if m.Output == "" {
		return "audio"
	}
	return m.Output
}

func statusText(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	beat := m.Ctrl.Position()
	beatText := "--"
	if beat >= 0 {
		beatText = fmt.Sprintf("%02d", beat+1)
	}
	portStatus := ""
	if m.portStatus != "" {
		portStatus = "  [" + m.portStatus + "]"
	}

	header := headerStyle.Render(fmt.Sprintf("go-drumseq  %s  %3dbpm  beat:%s  %s%s",
		m.Ctrl.State(), m.Transport.Tempo(), beatText, m.outputLabel(), portStatus))

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{widgets.GridKeys, transportKeys}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.grid.View())
	out.WriteString("\n")
	if m.status != nil {
		out.WriteString(errStyle.Render(statusText(m.status)))
		out.WriteString("\n")
	}
	out.WriteString(help)

	return out.String()
}
