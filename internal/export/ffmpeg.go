package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ffmpegEncoder streams PNG frames into an ffmpeg subprocess which muxes
// them into the container named by the output extension.
type ffmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	opts   Options
	enc    png.Encoder
	frames int
	closed bool
}

func newFFmpeg(path string, opts Options) (Encoder, error) {
	bin := opts.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found on PATH (write .avi or .gif instead): %v", ErrEncoderUnavailable, bin, err)
	}

	e := &ffmpegEncoder{
		opts: opts,
		enc:  png.Encoder{CompressionLevel: png.BestSpeed},
	}
	e.cmd = exec.Command(resolved, ffmpegArgs(path, opts)...)
	e.cmd.Stderr = &e.stderr

	e.stdin, err = e.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return e, nil
}

func ffmpegArgs(path string, opts Options) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-framerate", strconv.Itoa(opts.FPS),
		"-i", "-",
		// yuv420p needs even dimensions.
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-r", strconv.Itoa(opts.FPS),
	}
	if strings.HasSuffix(strings.ToLower(path), ".webm") {
		args = append(args, "-c:v", "libvpx-vp9")
	} else {
		args = append(args, "-c:v", "libx264")
	}
	return append(args, "-pix_fmt", "yuv420p", path)
}

func (e *ffmpegEncoder) AddFrame(img image.Image) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkBounds(img, e.opts); err != nil {
		return err
	}
	if err := e.enc.Encode(e.stdin, img); err != nil {
		return fmt.Errorf("write frame to ffmpeg: %w%s", err, e.detail())
	}
	e.frames++
	return nil
}

func (e *ffmpegEncoder) Frames() int { return e.frames }

func (e *ffmpegEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	// Wait even when closing the pipe fails so the child is reaped.
	closeErr := e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return errors.Join(closeErr, fmt.Errorf("ffmpeg: %w%s", err, e.detail()))
	}
	return closeErr
}

func (e *ffmpegEncoder) detail() string {
	msg := strings.TrimSpace(e.stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}
