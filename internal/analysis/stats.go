package analysis

import (
	"math"
	"sync"
)

// FrameStats summarises the points of one frame.
type FrameStats struct {
	Frame     int     `json:"frame"`
	Count     int     `json:"count"`
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`
	MinX      float64 `json:"min_x"`
	MaxX      float64 `json:"max_x"`
	MinY      float64 `json:"min_y"`
	MaxY      float64 `json:"max_y"`
}

// Spread is the diagonal of the bounding box.
func (s FrameStats) Spread() float64 {
	return math.Hypot(s.MaxX-s.MinX, s.MaxY-s.MinY)
}

// Compute returns the stats of a point set. An empty frame has zero
// count and zero bounds.
func Compute(xs, ys []float64) FrameStats {
	n := min(len(xs), len(ys))
	if n == 0 {
		return FrameStats{}
	}

	s := FrameStats{
		Count: n,
		MinX:  math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		s.CentroidX += x
		s.CentroidY += y
		s.MinX = math.Min(s.MinX, x)
		s.MaxX = math.Max(s.MaxX, x)
		s.MinY = math.Min(s.MinY, y)
		s.MaxY = math.Max(s.MaxY, y)
	}
	s.CentroidX /= float64(n)
	s.CentroidY /= float64(n)
	return s
}

// Collector records FrameStats for every frame it observes. It
// implements playback.Observer.
type Collector struct {
	mu    sync.Mutex
	stats []FrameStats
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) OnFrame(t int, xs, ys []float64) {
	s := Compute(xs, ys)
	s.Frame = t
	c.mu.Lock()
	c.stats = append(c.stats, s)
	c.mu.Unlock()
}

// Stats returns a copy of the collected stats in frame order.
func (c *Collector) Stats() []FrameStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FrameStats, len(c.stats))
	copy(out, c.stats)
	return out
}

// CentroidY is the centroid height per frame.
func (c *Collector) CentroidY() []float64 {
	stats := c.Stats()
	ys := make([]float64, len(stats))
	for i, s := range stats {
		ys[i] = s.CentroidY
	}
	return ys
}

// Summary aggregates a run.
type Summary struct {
	Frames       int
	MinHeight    float64
	MaxHeight    float64
	MeanSpread   float64
	DominantFreq float64
}

// Summarize reduces per-frame stats, with fps as the sample rate for the
// centroid-height spectrum.
func Summarize(stats []FrameStats, fps float64) Summary {
	if len(stats) == 0 {
		return Summary{}
	}
	sum := Summary{
		Frames:    len(stats),
		MinHeight: math.Inf(1),
		MaxHeight: math.Inf(-1),
	}
	heights := make([]float64, len(stats))
	for i, s := range stats {
		heights[i] = s.CentroidY
		sum.MinHeight = math.Min(sum.MinHeight, s.CentroidY)
		sum.MaxHeight = math.Max(sum.MaxHeight, s.CentroidY)
		sum.MeanSpread += s.Spread()
	}
	sum.MeanSpread /= float64(len(stats))
	sum.DominantFreq = DominantFrequency(heights, fps)
	return sum
}
