package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/softplot/internal/playback"
)

const (
	DefaultCols = 60
	DefaultRows = 20
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	labelStyle  = lipgloss.NewStyle().Width(12)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
)

// TerminalSink collects Braille frames during a playback run and replays
// them in a Bubble Tea program on Export.
type TerminalSink struct {
	Cols, Rows int
	Theme      string

	opts    []tea.ProgramOption
	surface *playback.Surface
	frames  []string
	heights []float64
}

func NewTerminalSink(theme string, opts ...tea.ProgramOption) *TerminalSink {
	return &TerminalSink{
		Cols:  DefaultCols,
		Rows:  DefaultRows,
		Theme: theme,
		opts:  opts,
	}
}

func (s *TerminalSink) Configure(surface *playback.Surface) error {
	if s.Cols <= 0 || s.Rows <= 0 {
		return fmt.Errorf("viz: invalid canvas size %dx%d", s.Cols, s.Rows)
	}
	s.surface = surface
	s.frames = make([]string, 0, surface.Frames)
	s.heights = make([]float64, 0, surface.Frames)
	return nil
}

func (s *TerminalSink) Update(t int, xs, ys []float64) error {
	if s.surface == nil {
		return errors.New("viz: sink not configured")
	}
	c := NewCanvas(s.Cols, s.Rows)
	c.Plot(s.surface.Viewport, xs, ys)
	s.frames = append(s.frames, c.String())
	s.heights = append(s.heights, meanOf(ys))
	return nil
}

// Export runs the player until the user quits.
func (s *TerminalSink) Export() error {
	if s.surface == nil {
		return errors.New("viz: sink not configured")
	}
	p := tea.NewProgram(s.Player(), s.opts...)
	_, err := p.Run()
	return err
}

// Player builds the replay model over the frames collected so far.
func (s *TerminalSink) Player() Player {
	return NewPlayer(s.surface, s.frames, s.heights, s.Theme)
}

func (s *TerminalSink) Frames() int { return len(s.frames) }

// TickMsg advances the player by one frame.
type TickMsg time.Time

// Player replays pre-rendered frames at the surface interval, looping
// at the end.
type Player struct {
	surface *playback.Surface
	frames  []string
	heights []float64
	pos     int
	paused  bool
	theme   int
}

func NewPlayer(s *playback.Surface, frames []string, heights []float64, theme string) Player {
	return Player{
		surface: s,
		frames:  frames,
		heights: heights,
		theme:   ThemeIndex(theme),
	}
}

func (m Player) Pos() int          { return m.pos }
func (m Player) Paused() bool      { return m.paused }
func (m Player) ThemeName() string { return Themes[m.theme].Name }

func (m Player) tick() tea.Cmd {
	return tea.Tick(m.surface.Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Player) Init() tea.Cmd {
	return m.tick()
}

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "[":
			m.paused = true
			if m.pos > 0 {
				m.pos--
			}
		case "]":
			m.paused = true
			if m.pos < len(m.frames)-1 {
				m.pos++
			}
		case "r":
			m.pos = 0
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		}
		return m, nil

	case TickMsg:
		if !m.paused && len(m.frames) > 0 {
			m.pos = (m.pos + 1) % len(m.frames)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Player) View() string {
	th := Themes[m.theme]
	header := lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1)
	label := labelStyle.Foreground(th.Muted)
	value := lipgloss.NewStyle().Foreground(th.Text)

	if len(m.frames) == 0 {
		return header.Render("SOFTPLOT") + "\n" + value.Render("no frames to play") + "\n"
	}

	canvas := canvasStyle.Foreground(th.Marker).Render(m.frames[m.pos])

	status := "PLAYING"
	if m.paused {
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(header.Render("SOFTPLOT") + "\n")
	s.WriteString(lipgloss.NewStyle().Foreground(th.Accent).Render(status) + "\n\n")
	s.WriteString(label.Render("Frame") + value.Render(fmt.Sprintf("%d/%d", m.pos+1, len(m.frames))) + "\n")
	s.WriteString(label.Render("Particles") + value.Render(fmt.Sprintf("%d", m.surface.Particles)) + "\n")
	s.WriteString(label.Render("Interval") + value.Render(m.surface.Interval.String()) + "\n")
	s.WriteString(label.Render("Theme") + value.Render(th.Name) + "\n")

	if m.pos > 0 && m.pos < len(m.heights) {
		chart := asciigraph.Plot(m.heights[:m.pos+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Mean height"))
		s.WriteString(graphStyle.Foreground(th.Primary).Render(chart) + "\n")
	}

	s.WriteString(lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1).Render("SP:Pause [ ]:Step\nR:Restart T:Theme Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, statsStyle.Render(s.String()))
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
