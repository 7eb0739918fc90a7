package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// gifEncoder buffers paletted frames and writes them on Close.
type gifEncoder struct {
	f      *os.File
	opts   Options
	anim   gif.GIF
	delay  int
	closed bool
}

func newGIF(path string, opts Options) (Encoder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create gif: %w", err)
	}
	return &gifEncoder{
		f:     f,
		opts:  opts,
		anim:  gif.GIF{LoopCount: 0},
		delay: gifDelay(opts.FPS),
	}, nil
}

// gifDelay converts fps to the GIF delay unit of 1/100 s.
func gifDelay(fps int) int {
	d := (100 + fps/2) / fps
	if d < 1 {
		d = 1
	}
	return d
}

func (e *gifEncoder) AddFrame(img image.Image) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkBounds(img, e.opts); err != nil {
		return err
	}

	b := img.Bounds()
	pal := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.Draw(pal, pal.Bounds(), img, b.Min, draw.Src)

	e.anim.Image = append(e.anim.Image, pal)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

func (e *gifEncoder) Frames() int { return len(e.anim.Image) }

func (e *gifEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if len(e.anim.Image) == 0 {
		err = fmt.Errorf("gif: no frames to write")
	} else if eerr := gif.EncodeAll(e.f, &e.anim); eerr != nil {
		err = fmt.Errorf("encode gif: %w", eerr)
	}
	if cerr := e.f.Close(); err == nil {
		err = cerr
	}
	return err
}
