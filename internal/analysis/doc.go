// Package analysis summarises soft-body frames.
//
// [Compute] reduces one frame to a [FrameStats] (centroid and bounding
// box). A [Collector] attached to a playback driver records stats for
// every frame of a run, and [DominantFrequency] finds the strongest
// oscillation in a per-frame series such as the centroid height:
//
//	c := analysis.NewCollector()
//	driver.Observe(c)
//	...
//	f := analysis.DominantFrequency(c.CentroidY(), fps)
package analysis
