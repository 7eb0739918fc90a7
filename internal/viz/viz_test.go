package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/softplot/internal/frames"
	"github.com/san-kum/softplot/internal/playback"
)

func testSurface(t *testing.T) *playback.Surface {
	t.Helper()
	st, err := frames.Read(strings.NewReader("2,1,3\n0,1,0.5,0.5\n0.1,1.1,0.4,0.4\n0.2,1.2,0.3,0.3\n"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := playback.Configure(st, playback.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(10, 10) // ignored
	c.Set(-1, 0)  // ignored

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in cell 0, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8 in cell 1, got %U", c.Grid[0][1])
	}
	if c.Dots() != 2 {
		t.Errorf("expected 2 dots, got %d", c.Dots())
	}

	c.Clear()
	if c.Dots() != 0 {
		t.Error("clear should remove all dots")
	}
}

func TestCanvasPlotCorners(t *testing.T) {
	vp := playback.Viewport{XMin: -1, XMax: 3, YMin: 0, YMax: 1.5}
	c := NewCanvas(10, 5)

	n := c.Plot(vp, []float64{-1, 3, 10}, []float64{1.5, 0, 1})
	if n != 2 {
		t.Errorf("expected 2 points inside viewport, got %d", n)
	}
	// (-1, 1.5) is top-left, (3, 0) bottom-right.
	if c.Grid[0][0]&0x1 == 0 {
		t.Error("expected top-left dot")
	}
	if c.Grid[4][9]&0x80 == 0 {
		t.Error("expected bottom-right dot")
	}
}

func TestCanvasPlotDegenerate(t *testing.T) {
	c := NewCanvas(4, 4)
	if n := c.Plot(playback.Viewport{}, []float64{0}, []float64{0}); n != 0 {
		t.Errorf("degenerate viewport plotted %d points", n)
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" {
		t.Error("expected ocean theme")
	}
	if GetTheme("missing").Name != "classic" {
		t.Error("unknown theme should fall back to classic")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func TestTerminalSinkCollectsFrames(t *testing.T) {
	s := testSurface(t)
	sink := NewTerminalSink("classic")

	if err := sink.Update(0, nil, nil); err == nil {
		t.Error("expected error before configure")
	}
	if err := sink.Configure(s); err != nil {
		t.Fatal(err)
	}
	if err := sink.Update(0, []float64{0, 1}, []float64{0.5, 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Update(1, []float64{0.1, 1.1}, []float64{0.4, 0.4}); err != nil {
		t.Fatal(err)
	}
	if sink.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", sink.Frames())
	}

	p := sink.Player()
	if !strings.Contains(p.View(), "1/2") {
		t.Error("expected frame counter in view")
	}
}

func TestPlayerTicksAndLoops(t *testing.T) {
	s := testSurface(t)
	p := NewPlayer(s, []string{"a", "b", "c"}, []float64{1, 0.5, 0.2}, "classic")

	if p.Init() == nil {
		t.Fatal("expected initial tick")
	}

	var m tea.Model = p
	for i := 1; i <= 3; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(TickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
		want := i % 3
		if got := m.(Player).Pos(); got != want {
			t.Errorf("after %d ticks expected pos %d, got %d", i, want, got)
		}
	}
}

func TestPlayerPauseAndStep(t *testing.T) {
	s := testSurface(t)
	var m tea.Model = NewPlayer(s, []string{"a", "b", "c"}, nil, "classic")

	m, _ = m.Update(key(" "))
	if !m.(Player).Paused() {
		t.Fatal("space should pause")
	}
	m, _ = m.Update(TickMsg(time.Now()))
	if m.(Player).Pos() != 0 {
		t.Error("paused player should not advance")
	}

	m, _ = m.Update(key("]"))
	m, _ = m.Update(key("]"))
	m, _ = m.Update(key("]"))
	if m.(Player).Pos() != 2 {
		t.Errorf("step forward should clamp at last frame, got %d", m.(Player).Pos())
	}

	m, _ = m.Update(key("["))
	if m.(Player).Pos() != 1 {
		t.Errorf("step back expected 1, got %d", m.(Player).Pos())
	}

	m, _ = m.Update(key("r"))
	if m.(Player).Pos() != 0 {
		t.Error("restart should return to frame 0")
	}

	m, _ = m.Update(key(" "))
	if m.(Player).Paused() {
		t.Error("space should resume")
	}
}

func TestPlayerThemeAndQuit(t *testing.T) {
	s := testSurface(t)
	var m tea.Model = NewPlayer(s, []string{"a"}, nil, "sunset")

	if m.(Player).ThemeName() != "sunset" {
		t.Fatalf("expected sunset, got %s", m.(Player).ThemeName())
	}
	m, _ = m.Update(key("t"))
	if m.(Player).ThemeName() != "classic" {
		t.Errorf("theme should wrap to classic, got %s", m.(Player).ThemeName())
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlayerNoFrames(t *testing.T) {
	s := testSurface(t)
	var m tea.Model = NewPlayer(s, nil, nil, "classic")
	m, _ = m.Update(TickMsg(time.Now()))
	if !strings.Contains(m.View(), "no frames") {
		t.Error("expected empty-player message")
	}
}
