package render

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/softplot/internal/config"
)

// Style controls how a frame is drawn.
type Style struct {
	Width      int
	Height     int
	Marker     color.RGBA
	Background color.RGBA
	DotRadius  float64
	FrameLabel bool
}

func DefaultStyle() Style {
	return Style{
		Width:      config.DefaultImageWidth,
		Height:     config.DefaultImageHeight,
		Marker:     color.RGBA{R: 255, A: 255},
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		DotRadius:  config.DefaultDotRadius,
	}
}

// ParseStyle builds a Style from the render section of the config.
func ParseStyle(rc config.RenderConfig) (Style, error) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return Style{}, fmt.Errorf("render: invalid image size %dx%d", rc.Width, rc.Height)
	}
	if rc.DotRadius <= 0 {
		return Style{}, fmt.Errorf("render: invalid dot radius %g", rc.DotRadius)
	}
	marker, err := ParseColor(rc.Marker)
	if err != nil {
		return Style{}, fmt.Errorf("render: marker: %w", err)
	}
	bg, err := ParseColor(rc.Background)
	if err != nil {
		return Style{}, fmt.Errorf("render: background: %w", err)
	}
	return Style{
		Width:      rc.Width,
		Height:     rc.Height,
		Marker:     marker,
		Background: bg,
		DotRadius:  rc.DotRadius,
		FrameLabel: rc.FrameLabel,
	}, nil
}

// ParseColor accepts "#rrggbb" or "#rgb".
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// contrast picks black or white, whichever reads better on bg.
func contrast(bg color.RGBA) color.RGBA {
	cf, _ := colorful.MakeColor(bg)
	l, _, _ := cf.Lab()
	if l > 0.5 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
