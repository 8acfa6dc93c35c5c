package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drumseq/sequencer"
	"go-drumseq/theme"
)

// Grid draws one cell per (track, beat) and turns key presses into toggles.
// It never edits tracks itself: reads go through Tracks, writes through
// OnBeatToggled.
type Grid struct {
	Tracks        func() sequencer.Tracks
	OnBeatToggled func(track, beat int) error

	theme    *theme.Theme
	track    int
	beat     int
	playhead int
}

func NewGrid(tracks func() sequencer.Tracks, onToggle func(track, beat int) error, th *theme.Theme) *Grid {
	if th == nil {
		th = theme.New(nil)
	}
	return &Grid{
		Tracks:        tracks,
		OnBeatToggled: onToggle,
		theme:         th,
		playhead:      -1,
	}
}

// Cursor returns the selected track and beat
func (g *Grid) Cursor() (track, beat int) { return g.track, g.beat }

// SetPlayhead marks beat as playing; -1 hides the playhead
func (g *Grid) SetPlayhead(beat int) { g.playhead = beat }

// HandleKey moves the cursor or toggles the beat under it. Keys it does not
// know are ignored; a rejected toggle returns the error.
func (g *Grid) HandleKey(key string) error {
	ts := g.Tracks()
	switch key {
	case "h", "left":
		if g.beat > 0 {
			g.beat--
		}
	case "l", "right":
		if g.beat < ts.BeatsPerLoop()-1 {
			g.beat++
		}
	case "k", "up":
		if g.track > 0 {
			g.track--
		}
	case "j", "down":
		if g.track < ts.Len()-1 {
			g.track++
		}
	case " ", "enter":
		if g.OnBeatToggled != nil {
			return g.OnBeatToggled(g.track, g.beat)
		}
	}
	return nil
}

func (g *Grid) View() string {
	ts := g.Tracks()
	sym := g.theme.Symbols

	label := lipgloss.NewStyle().Foreground(g.theme.FG())
	selected := lipgloss.NewStyle().Foreground(g.theme.Accent()).Bold(true)
	empty := lipgloss.NewStyle().Foreground(g.theme.Muted())
	active := lipgloss.NewStyle().Foreground(g.theme.Active())
	playhead := lipgloss.NewStyle().Foreground(g.theme.Success())
	cursor := lipgloss.NewStyle().Foreground(g.theme.Cursor())

	width := 0
	for _, tr := range ts.All() {
		width = max(width, len(tr.Instrument().ID()))
	}

	var out strings.Builder
	out.WriteString(strings.Repeat(" ", width+1))
	for b := 0; b < ts.BeatsPerLoop(); b++ {
		out.WriteString(empty.Render(fmt.Sprintf("%d", (b+1)%10)))
		out.WriteString(" ")
	}
	out.WriteString("\n")

	for t, tr := range ts.All() {
		name := fmt.Sprintf("%-*s ", width, tr.Instrument().ID())
		if t == g.track {
			out.WriteString(selected.Render(name))
		} else {
			out.WriteString(label.Render(name))
		}

		for b := 0; b < ts.BeatsPerLoop(); b++ {
			isCursor := t == g.track && b == g.beat
			on := tr.IsActive(b)

			var char rune
			style, plain := empty, false
			switch {
			case b == g.playhead && !on:
				char, style = sym.StepPlayhead, playhead
				if isCursor {
					char = sym.CursorPlayhead
				}
			case on:
				char, style = sym.StepActive, active
				if isCursor {
					char = sym.CursorActive
				}
				if b == g.playhead {
					style = playhead
				}
			default:
				char, plain = sym.StepEmpty, true
				if isCursor {
					char = sym.CursorEmpty
				}
			}
			if isCursor && plain {
				style = cursor
			}

			out.WriteString(style.Render(string(char)))
			out.WriteString(" ")
		}
		out.WriteString("\n")
	}

	return out.String()
}
