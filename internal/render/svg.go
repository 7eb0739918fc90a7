package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/softplot/internal/playback"
)

// ScatterToSVG draws the points of one frame as circles inside the
// viewport. Points outside the viewport are left out.
func ScatterToSVG(vp playback.Viewport, xs, ys []float64, style Style) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s" stroke="%s"/>
<g fill="%s">
`, style.Width, style.Height, style.Width, style.Height,
		Hex(style.Background), Hex(contrast(style.Background)), Hex(style.Marker)))

	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		cx, cy, ok := Project(vp, xs[i], ys[i], style.Width, style.Height)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, style.DotRadius))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Snapshot renders frame t of src to path as PNG or SVG, by extension.
func Snapshot(src playback.Source, t int, path string, style Style) error {
	s, err := playback.Configure(src, playback.DefaultOptions())
	if err != nil {
		return err
	}
	fr, err := src.Frame(t)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err := NewPlotter(style).Frame(s, t, fr.X, fr.Y)
		if err != nil {
			return err
		}
		return WritePNG(path, img)
	case ".svg":
		return os.WriteFile(path, []byte(ScatterToSVG(s.Viewport, fr.X, fr.Y, style)), 0644)
	}
	return fmt.Errorf("render: snapshot format %q not supported (use .png or .svg)", filepath.Ext(path))
}
