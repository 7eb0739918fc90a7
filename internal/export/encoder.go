package export

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates an output extension with no encoder.
	ErrUnsupportedFormat = errors.New("export: unsupported output format")

	// ErrEncoderUnavailable indicates a missing external encoder binary.
	ErrEncoderUnavailable = errors.New("export: encoder not available")

	// ErrFrameSize indicates a frame whose bounds differ from the video size.
	ErrFrameSize = errors.New("export: frame size mismatch")

	// ErrClosed indicates a write after Close.
	ErrClosed = errors.New("export: encoder closed")
)

// Encoder appends frames to a video file. Close finalises the container.
type Encoder interface {
	AddFrame(img image.Image) error
	Frames() int
	Close() error
}

// Options configure a video encoder.
type Options struct {
	Width   int
	Height  int
	FPS     int
	Quality int    // JPEG quality for MJPEG, 1-100
	FFmpeg  string // ffmpeg binary for container formats
}

func DefaultOptions() Options {
	return Options{
		Width:   640,
		Height:  480,
		FPS:     24,
		Quality: 90,
		FFmpeg:  "ffmpeg",
	}
}

type opener func(path string, opts Options) (Encoder, error)

var openers = map[string]opener{
	".avi":  newMJPEG,
	".gif":  newGIF,
	".mp4":  newFFmpeg,
	".mov":  newFFmpeg,
	".mkv":  newFFmpeg,
	".webm": newFFmpeg,
}

// New opens an encoder for path, choosing the container from its
// extension. An existing file is overwritten.
func New(path string, opts Options) (Encoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("export: invalid video size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("export: invalid fps %d", opts.FPS)
	}

	ext := strings.ToLower(filepath.Ext(path))
	open, ok := openers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Formats(), ", "))
	}
	return open(path, opts)
}

// Formats lists supported output extensions.
func Formats() []string {
	exts := make([]string, 0, len(openers))
	for ext := range openers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func checkBounds(img image.Image, opts Options) error {
	b := img.Bounds()
	if b.Dx() != opts.Width || b.Dy() != opts.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), opts.Width, opts.Height)
	}
	return nil
}
