package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/softplot/internal/playback"
)

const (
	chartPadding = 20
	borderWidth  = 1.0
	labelMargin  = 6
)

// Plotter turns point sets into fixed-size scatter images.
type Plotter struct {
	style Style
}

func NewPlotter(style Style) *Plotter {
	return &Plotter{style: style}
}

func (p *Plotter) Style() Style { return p.style }

// Frame draws frame t of s. The axis ranges are the surface viewport, so
// every frame of a run shares the same data-to-pixel mapping. Frames
// with no points or a zero-extent viewport come back as blank canvases.
func (p *Plotter) Frame(s *playback.Surface, t int, xs, ys []float64) (*image.RGBA, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("render: frame %d has %d x values and %d y values", t, len(xs), len(ys))
	}

	var img *image.RGBA
	if len(xs) == 0 || s.Viewport.Degenerate() {
		img = p.blank()
	} else {
		var err error
		img, err = p.scatter(s, xs, ys)
		if err != nil {
			return nil, fmt.Errorf("render: frame %d: %w", t, err)
		}
	}

	if p.style.FrameLabel {
		p.label(img, fmt.Sprintf("frame %d/%d", t+1, s.Frames))
	}
	return img, nil
}

func (p *Plotter) blank() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.style.Width, p.style.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{p.style.Background}, image.Point{}, draw.Src)
	return img
}

func (p *Plotter) scatter(s *playback.Surface, xs, ys []float64) (*image.RGBA, error) {
	vp := s.Viewport
	bg := toDrawing(p.style.Background)
	axisStyle := chart.Style{Hidden: !s.ShowTicks, FontSize: 8}

	graph := chart.Chart{
		Width:  p.style.Width,
		Height: p.style.Height,
		Background: chart.Style{
			FillColor: bg,
			Padding:   chart.Box{Top: chartPadding, Left: chartPadding, Right: chartPadding, Bottom: chartPadding},
		},
		Canvas: chart.Style{
			FillColor:   bg,
			StrokeColor: toDrawing(contrast(p.style.Background)),
			StrokeWidth: borderWidth,
		},
		XAxis: chart.XAxis{
			Style: axisStyle,
			Range: &chart.ContinuousRange{Min: vp.XMin, Max: vp.XMax},
		},
		YAxis: chart.YAxis{
			Style: axisStyle,
			Range: &chart.ContinuousRange{Min: vp.YMin, Max: vp.YMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    p.style.DotRadius,
					DotColor:    toDrawing(p.style.Marker),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, p.style.Width, p.style.Height))
	draw.Draw(img, img.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return img, nil
}

func (p *Plotter) label(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(contrast(p.style.Background)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(labelMargin, labelMargin+basicfont.Face7x13.Ascent),
	}
	d.DrawString(text)
}

// Project maps a data point into pixel space for a w x h image with the
// y axis pointing up. ok is false outside the viewport.
func Project(vp playback.Viewport, x, y float64, w, h int) (px, py float64, ok bool) {
	if vp.Degenerate() {
		return 0, 0, false
	}
	px = (x - vp.XMin) / vp.Dx() * float64(w)
	py = float64(h) - (y-vp.YMin)/vp.Dy()*float64(h)
	return px, py, vp.Contains(x, y)
}
