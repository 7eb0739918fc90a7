package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/softplot/internal/frames"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = 32, 24
	return opts
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "video.bmp"), smallOptions())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestInvalidOptions(t *testing.T) {
	opts := smallOptions()
	opts.FPS = 0
	if _, err := New(filepath.Join(t.TempDir(), "v.avi"), opts); err == nil {
		t.Error("expected error for zero fps")
	}

	opts = smallOptions()
	opts.Width = 0
	if _, err := New(filepath.Join(t.TempDir(), "v.avi"), opts); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestFormats(t *testing.T) {
	got := strings.Join(Formats(), " ")
	for _, ext := range []string{".avi", ".gif", ".mp4"} {
		if !strings.Contains(got, ext) {
			t.Errorf("formats %q missing %s", got, ext)
		}
	}
}

func TestMJPEGWritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.avi")
	enc, err := New(path, smallOptions())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := enc.AddFrame(solid(32, 24, color.White)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if enc.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", enc.Frames())
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		t.Errorf("output is not an AVI file")
	}
}

func TestFrameSizeMismatch(t *testing.T) {
	enc, err := New(filepath.Join(t.TempDir(), "video.gif"), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	if err := enc.AddFrame(solid(10, 10, color.Black)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
}

func TestGIFFramesAndDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.gif")
	enc, err := New(path, smallOptions())
	if err != nil {
		t.Fatal(err)
	}

	colors := []color.Color{color.White, color.Black, color.RGBA{255, 0, 0, 255}}
	for _, c := range colors {
		if err := enc.AddFrame(solid(32, 24, c)); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := enc.AddFrame(solid(32, 24, color.White)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(anim.Image))
	}
	for i, d := range anim.Delay {
		if d != 4 {
			t.Errorf("frame %d: expected delay 4, got %d", i, d)
		}
	}
}

func TestGIFDeterministic(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) []byte {
		path := filepath.Join(dir, name)
		enc, err := New(path, smallOptions())
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 2; i++ {
			enc.AddFrame(solid(32, 24, color.Gray{Y: uint8(i * 100)}))
		}
		if err := enc.Close(); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		return data
	}

	if !bytes.Equal(write("a.gif"), write("b.gif")) {
		t.Error("identical input produced different gif output")
	}
}

func TestGIFDelay(t *testing.T) {
	tests := []struct{ fps, want int }{
		{24, 4}, {10, 10}, {100, 1}, {500, 1}, {1, 100},
	}
	for _, tt := range tests {
		if got := gifDelay(tt.fps); got != tt.want {
			t.Errorf("fps %d: expected %d, got %d", tt.fps, tt.want, got)
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := strings.Join(ffmpegArgs("out.mp4", smallOptions()), " ")
	for _, want := range []string{"-y", "-framerate 24", "libx264", "out.mp4"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}

	args = strings.Join(ffmpegArgs("out.webm", smallOptions()), " ")
	if !strings.Contains(args, "libvpx-vp9") {
		t.Errorf("webm should use vp9: %q", args)
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	opts := smallOptions()
	opts.FFmpeg = "softplot-no-such-ffmpeg"
	_, err := New(filepath.Join(t.TempDir(), "video.mp4"), opts)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("expected ErrEncoderUnavailable, got %v", err)
	}
}

type failingPipe struct{ err error }

func (p failingPipe) Write(b []byte) (int, error) { return len(b), nil }
func (p failingPipe) Close() error                { return p.err }

func TestFFmpegCloseReapsOnPipeError(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not installed")
	}

	cmd := exec.Command(sh, "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	pipeErr := errors.New("broken pipe")
	e := &ffmpegEncoder{cmd: cmd, stdin: failingPipe{err: pipeErr}, opts: smallOptions()}

	if err := e.Close(); !errors.Is(err, pipeErr) {
		t.Errorf("expected pipe error, got %v", err)
	}
	if cmd.ProcessState == nil {
		t.Error("ffmpeg child was not waited on")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}

func TestFFmpegMP4(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	path := filepath.Join(t.TempDir(), "video.mp4")
	enc, err := New(path, smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := enc.AddFrame(solid(32, 24, color.White)); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("mp4 output is empty")
	}
}

func testStore(t *testing.T) *frames.Store {
	t.Helper()
	st, err := frames.Read(strings.NewReader("2,1,2\n0,0,1,0\n0.5,0.25,1.5,0.25\n"))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testStore(t)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.FrameCount != 2 || data.Particles != 2 || len(data.Frames) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Frames[1].Y[0] != 0.25 {
		t.Errorf("expected y 0.25, got %f", data.Frames[1].Y[0])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testStore(t)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if strings.Join(rows[4], ",") != "1,1,1.500000,0.250000" {
		t.Errorf("unexpected last row %v", rows[4])
	}
}
