package playback_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/softplot/internal/frames"
	"github.com/san-kum/softplot/internal/playback"
)

type recordingSink struct {
	surface    *playback.Surface
	frames     []int
	points     [][2][]float64
	exported   int
	aborted    bool
	failUpdate int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failUpdate: -1}
}

func (r *recordingSink) Configure(s *playback.Surface) error {
	r.surface = s
	return nil
}

func (r *recordingSink) Update(t int, xs, ys []float64) error {
	if t == r.failUpdate {
		return errors.New("disk full")
	}
	r.frames = append(r.frames, t)
	r.points = append(r.points, [2][]float64{xs, ys})
	return nil
}

func (r *recordingSink) Export() error {
	r.exported++
	return nil
}

func (r *recordingSink) Abort() error {
	r.aborted = true
	return nil
}

// countingSource wraps a store and records every index requested.
type countingSource struct {
	*frames.Store
	requested []int
}

func (c *countingSource) Frame(t int) (frames.Frame, error) {
	c.requested = append(c.requested, t)
	return c.Store.Frame(t)
}

type frameCounter struct{ seen int }

func (f *frameCounter) OnFrame(int, []float64, []float64) { f.seen++ }

func mustRead(input string) *frames.Store {
	st, err := frames.Read(strings.NewReader(input))
	Expect(err).NotTo(HaveOccurred())
	return st
}

var _ = Describe("Viewport", func() {
	It("derives bounds from the grid size", func() {
		vp := playback.NewViewport(frames.Header{Width: 2, Height: 1, FrameCount: 3})
		Expect(vp.XMin).To(Equal(-1.0))
		Expect(vp.XMax).To(Equal(3.0))
		Expect(vp.YMin).To(Equal(0.0))
		Expect(vp.YMax).To(Equal(1.5))
		Expect(vp.Degenerate()).To(BeFalse())
	})

	It("is degenerate for an empty grid", func() {
		vp := playback.NewViewport(frames.Header{Width: 0, Height: 4, FrameCount: 1})
		Expect(vp.Degenerate()).To(BeTrue())
	})

	It("includes its edges", func() {
		vp := playback.NewViewport(frames.Header{Width: 2, Height: 2})
		Expect(vp.Contains(-1, 0)).To(BeTrue())
		Expect(vp.Contains(3, 3)).To(BeTrue())
		Expect(vp.Contains(3.01, 1)).To(BeFalse())
	})
})

var _ = Describe("Driver", func() {
	var (
		src  *countingSource
		sink *recordingSink
	)

	BeforeEach(func() {
		src = &countingSource{Store: mustRead("2,1,3\n0.0,0.0,1.0,0.0\n0.1,0.0,1.1,0.0\n0.2,0.0,1.2,0.0\n")}
		sink = newRecordingSink()
	})

	It("renders every frame once, in order, then exports", func() {
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Run(context.Background())).To(Succeed())

		Expect(src.requested).To(Equal([]int{0, 1, 2}))
		Expect(sink.frames).To(Equal([]int{0, 1, 2}))
		for _, p := range sink.points {
			Expect(p[0]).To(HaveLen(2))
			Expect(p[1]).To(HaveLen(2))
		}
		Expect(sink.points[1][0]).To(Equal([]float64{0.1, 1.1}))
		Expect(sink.exported).To(Equal(1))
		Expect(d.State()).To(Equal(playback.Terminal))
		Expect(d.Rendered()).To(Equal(3))
	})

	It("hands the sink a configured surface", func() {
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Configure()).To(Succeed())

		s := sink.surface
		Expect(s).NotTo(BeNil())
		Expect(s.Viewport).To(Equal(playback.Viewport{XMin: -1, XMax: 3, YMin: 0, YMax: 1.5}))
		Expect(s.Frames).To(Equal(3))
		Expect(s.Particles).To(Equal(2))
		Expect(s.FPS).To(Equal(24))
		Expect(s.Interval).To(Equal(500 * time.Millisecond))
		Expect(s.ShowTicks).To(BeFalse())
		Expect(d.State()).To(Equal(playback.Configured))
	})

	It("never requests frames beyond the header count", func() {
		src = &countingSource{Store: mustRead("1,1,2\n0,0\n1,1\n2,2\n3,3\n")}
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Run(context.Background())).To(Succeed())
		Expect(src.requested).To(Equal([]int{0, 1}))
	})

	It("walks zero-particle frames without error", func() {
		src = &countingSource{Store: mustRead("0,3,2\n\n\n")}
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Run(context.Background())).To(Succeed())
		Expect(sink.frames).To(HaveLen(2))
		Expect(sink.points[0][0]).To(BeEmpty())
	})

	It("notifies observers per frame", func() {
		counter := &frameCounter{}
		d := playback.New(src, sink, playback.DefaultOptions())
		d.Observe(counter)
		Expect(d.Run(context.Background())).To(Succeed())
		Expect(counter.seen).To(Equal(3))
	})

	It("rejects out of order calls", func() {
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Render(context.Background())).To(MatchError(playback.ErrState))
		Expect(d.Export()).To(MatchError(playback.ErrState))
		Expect(d.Close()).To(MatchError(playback.ErrState))
		Expect(d.Configure()).To(Succeed())
		Expect(d.Configure()).To(MatchError(playback.ErrState))
	})

	It("rejects invalid options", func() {
		d := playback.New(src, sink, playback.Options{FPS: 0, Interval: time.Second})
		Expect(d.Configure()).To(MatchError(playback.ErrOptions))
		Expect(d.State()).To(Equal(playback.Terminal))
	})

	It("refuses a source with no frames before touching the sink", func() {
		src = &countingSource{Store: mustRead("2,1,0\n")}
		d := playback.New(src, sink, playback.DefaultOptions())

		Expect(d.Run(context.Background())).To(MatchError(playback.ErrNoFrames))
		Expect(sink.surface).To(BeNil())
		Expect(sink.exported).To(Equal(0))
		Expect(src.requested).To(BeEmpty())
		Expect(d.State()).To(Equal(playback.Terminal))
	})

	It("stops on a short record and aborts the sink", func() {
		src = &countingSource{Store: mustRead("2,1,3\n0,0,1,0\n0,0\n0,0,1,0\n")}
		d := playback.New(src, sink, playback.DefaultOptions())

		err := d.Run(context.Background())
		Expect(err).To(MatchError(frames.ErrFieldCount))
		Expect(sink.frames).To(Equal([]int{0}))
		Expect(sink.exported).To(Equal(0))
		Expect(sink.aborted).To(BeTrue())
		Expect(d.State()).To(Equal(playback.Terminal))
	})

	It("aborts when the sink fails", func() {
		sink.failUpdate = 1
		d := playback.New(src, sink, playback.DefaultOptions())
		err := d.Run(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("draw frame 1"))
		Expect(sink.aborted).To(BeTrue())
	})

	It("honours context cancellation between frames", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := playback.New(src, sink, playback.DefaultOptions())
		Expect(d.Configure()).To(Succeed())
		Expect(d.Render(ctx)).To(MatchError(playback.ErrCanceled))
		Expect(sink.frames).To(BeEmpty())
	})

	It("reports the export duration", func() {
		d := playback.New(src, sink, playback.Options{FPS: 3, Interval: time.Second})
		Expect(d.Configure()).To(Succeed())
		Expect(d.Surface().Duration()).To(Equal(time.Second))
	})
})
