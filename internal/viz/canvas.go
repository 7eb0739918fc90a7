package viz

import (
	"math"
	"strings"

	"github.com/san-kum/softplot/internal/playback"
)

const brailleBlank = 0x2800

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille dot matrix of Width x Height cells, giving
// (Width*2) x (Height*4) addressable dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// Plot maps each point through the viewport and sets its dot, with y
// pointing up. It returns how many points landed inside the viewport.
func (c *Canvas) Plot(vp playback.Viewport, xs, ys []float64) int {
	if vp.Degenerate() || c.Width == 0 || c.Height == 0 {
		return 0
	}
	cw, ch := float64(c.Width*2-1), float64(c.Height*4-1)

	n := 0
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if !vp.Contains(xs[i], ys[i]) {
			continue
		}
		px := math.Round((xs[i] - vp.XMin) / vp.Dx() * cw)
		py := math.Round((vp.YMax - ys[i]) / vp.Dy() * ch)
		c.Set(int(px), int(py))
		n++
	}
	return n
}

// Dots counts the dots currently set.
func (c *Canvas) Dots() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := int(r - brailleBlank); bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}
