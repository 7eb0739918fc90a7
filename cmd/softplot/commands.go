package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/softplot/internal/analysis"
	"github.com/san-kum/softplot/internal/config"
	"github.com/san-kum/softplot/internal/export"
	"github.com/san-kum/softplot/internal/frames"
	"github.com/san-kum/softplot/internal/integrators"
	"github.com/san-kum/softplot/internal/physics"
	"github.com/san-kum/softplot/internal/playback"
	"github.com/san-kum/softplot/internal/render"
	"github.com/san-kum/softplot/internal/storage"
	"github.com/san-kum/softplot/internal/viz"
)

// progress prints a single updating status line while frames render.
type progress struct {
	out   io.Writer
	total int
}

func (p *progress) OnFrame(t int, xs, ys []float64) {
	if t+1 == p.total || t%10 == 0 {
		fmt.Fprintf(p.out, "\rrendering frame %d/%d", t+1, p.total)
	}
	if t+1 == p.total {
		fmt.Fprintln(p.out)
	}
}

func playbackOptions(cfg *config.Config) playback.Options {
	return playback.Options{
		FPS:       cfg.FPS,
		Interval:  cfg.Interval(),
		ShowTicks: cfg.Render.ShowTicks,
	}
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func renderVideo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	src, err := frames.Load(cfg.Input)
	if err != nil {
		return err
	}
	style, err := render.ParseStyle(cfg.Render)
	if err != nil {
		return err
	}

	sink := render.NewVideoSink(cfg.Output, style, export.Options{
		Quality: cfg.Render.Quality,
		FFmpeg:  cfg.FFmpeg,
	})
	driver := playback.New(src, sink, playbackOptions(cfg))
	collector := analysis.NewCollector()
	driver.Observe(collector)
	driver.Observe(&progress{out: out, total: src.Header().FrameCount})

	ctx, cancel := interruptContext()
	defer cancel()

	h := src.Header()
	fmt.Fprintln(out, titleStyle.Render("softplot render"))
	fmt.Fprintf(out, "%s  %s\n", dimStyle.Render("input "), cfg.Input)
	fmt.Fprintf(out, "%s  %dx%d grid, %d particles, %d frames\n", dimStyle.Render("header"), h.Width, h.Height, h.Size(), h.FrameCount)

	start := time.Now()
	if err := driver.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	s := driver.Surface()
	fmt.Fprintf(out, "%s %s (%d frames, %v at %d fps) in %v\n",
		okStyle.Render("wrote"), cfg.Output, sink.Frames(), s.Duration(), s.FPS, elapsed.Round(time.Millisecond))

	sum := analysis.Summarize(collector.Stats(), float64(cfg.FPS))
	return saveRun(cmd, cfg, storage.RunMetadata{
		Kind:      "render",
		Input:     cfg.Input,
		Output:    cfg.Output,
		Width:     h.Width,
		Height:    h.Height,
		Frames:    h.FrameCount,
		Particles: h.Size(),
		FPS:       cfg.FPS,
		Elapsed:   elapsed.Seconds(),
		Metrics:   summaryMetrics(sum),
	}, collector.Stats())
}

func playTerminal(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	src, err := frames.Load(cfg.Input)
	if err != nil {
		return err
	}

	sink := viz.NewTerminalSink(cfg.Render.Theme)
	driver := playback.New(src, sink, playbackOptions(cfg))
	collector := analysis.NewCollector()
	driver.Observe(collector)

	ctx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	if err := driver.Run(ctx); err != nil {
		return err
	}

	h := src.Header()
	return saveRun(cmd, cfg, storage.RunMetadata{
		Kind:      "play",
		Input:     cfg.Input,
		Width:     h.Width,
		Height:    h.Height,
		Frames:    h.FrameCount,
		Particles: h.Size(),
		Elapsed:   time.Since(start).Seconds(),
	}, collector.Stats())
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	sc := cfg.Simulation

	path := cfg.Input
	if cmd.Flags().Changed("output") {
		path = output
	}

	integ, err := integrators.Get(sc.Integrator)
	if err != nil {
		return err
	}
	body, err := physics.NewSoftBody(physics.Params{
		Width:          sc.Width,
		Height:         sc.Height,
		DroppingHeight: sc.DroppingHeight,
		Stiffness:      sc.Stiffness,
		Damping:        sc.Damping,
		Gravity:        sc.Gravity,
		Dt:             sc.Dt,
	}, integ)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := frames.NewWriter(f, frames.Header{Width: sc.Width, Height: sc.Height, FrameCount: sc.Frames})
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Fprintln(out, titleStyle.Render("softplot simulate"))
	fmt.Fprintf(out, "%s  %dx%d grid, %d springs, %s integrator\n", dimStyle.Render("body"), sc.Width, sc.Height, len(body.Springs), integ.Name())

	start := time.Now()
	res, err := physics.Simulate(ctx, body, sc.Frames, sc.Substeps, w)
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "%s %s (%d frames, %d steps, t=%.2f) in %v\n",
		okStyle.Render("wrote"), path, res.Frames, res.Steps, res.SimTime, elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "energy: %.4f -> %.4f\n", res.InitialEnergy, res.FinalEnergy)
	if len(res.Energies) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(res.Energies,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("energy per frame"),
		))
	}

	return saveRun(cmd, cfg, storage.RunMetadata{
		Kind:       "simulate",
		Output:     path,
		Width:      sc.Width,
		Height:     sc.Height,
		Frames:     res.Frames,
		Particles:  sc.Width * sc.Height,
		Integrator: integ.Name(),
		Elapsed:    elapsed.Seconds(),
		Params: map[string]float64{
			"dropping_height": sc.DroppingHeight,
			"stiffness":       sc.Stiffness,
			"damping":         sc.Damping,
			"gravity":         sc.Gravity,
			"dt":              sc.Dt,
			"substeps":        float64(sc.Substeps),
		},
		Metrics: map[string]float64{
			"initial_energy": res.InitialEnergy,
			"final_energy":   res.FinalEnergy,
			"sim_time":       res.SimTime,
		},
	}, nil)
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	src, err := frames.Load(cfg.Input)
	if err != nil {
		return err
	}
	h := src.Header()
	vp := playback.NewViewport(h)

	fmt.Fprintln(out, titleStyle.Render("softplot inspect"))
	fmt.Fprintf(out, "file:      %s\n", cfg.Input)
	fmt.Fprintf(out, "grid:      %dx%d (%d particles)\n", h.Width, h.Height, h.Size())
	fmt.Fprintf(out, "frames:    %d\n", h.FrameCount)
	fmt.Fprintf(out, "viewport:  %s\n", vp)

	collector := analysis.NewCollector()
	var bad []error
	outside := 0
	for t := 0; t < h.FrameCount; t++ {
		fr, err := src.Frame(t)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		for i := range fr.X {
			if !vp.Contains(fr.X[i], fr.Y[i]) {
				outside++
			}
		}
		collector.OnFrame(t, fr.X, fr.Y)
	}

	if len(bad) > 0 {
		fmt.Fprintf(out, "%s %d malformed frames\n", errStyle.Render("invalid:"), len(bad))
		for i, err := range bad {
			if i == 5 {
				fmt.Fprintf(out, "  ... %d more\n", len(bad)-5)
				break
			}
			fmt.Fprintf(out, "  %v\n", err)
		}
	} else {
		fmt.Fprintln(out, okStyle.Render("all frames valid"))
	}
	fmt.Fprintf(out, "points outside viewport: %d\n", outside)

	heights := collector.CentroidY()
	if len(heights) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("centroid height per frame"),
		))
	}

	sum := analysis.Summarize(collector.Stats(), float64(cfg.FPS))
	fmt.Fprintf(out, "\nheight range:       %.3f .. %.3f\n", sum.MinHeight, sum.MaxHeight)
	fmt.Fprintf(out, "mean spread:        %.3f\n", sum.MeanSpread)
	fmt.Fprintf(out, "dominant frequency: %.3f hz (at %d fps)\n", sum.DominantFreq, cfg.FPS)

	if len(bad) > 0 {
		return errors.Join(bad[0], fmt.Errorf("%d of %d frames malformed", len(bad), h.FrameCount))
	}
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	src, err := frames.Load(cfg.Input)
	if err != nil {
		return err
	}
	style, err := render.ParseStyle(cfg.Render)
	if err != nil {
		return err
	}
	path := "frame.png"
	if cmd.Flags().Changed("output") {
		path = output
	}
	if err := render.Snapshot(src, frameIndex, path, style); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (frame %d)\n", okStyle.Render("wrote"), path, frameIndex)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return exportData(cmd, export.WriteJSON)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return exportData(cmd, export.WriteCSV)
}

func exportData(cmd *cobra.Command, write func(io.Writer, export.FrameSource) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	src, err := frames.Load(cfg.Input)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("output") {
		return write(cmd.OutOrStdout(), src)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := write(f, src); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %d frames to %s\n", src.Len(), output)
	return nil
}

func saveRun(cmd *cobra.Command, cfg *config.Config, meta storage.RunMetadata, stats []analysis.FrameStats) error {
	if noSave {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(meta, stats)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dimStyle.Render("run id:"), id)
	return nil
}

func summaryMetrics(s analysis.Summary) map[string]float64 {
	return map[string]float64{
		"min_height":    s.MinHeight,
		"max_height":    s.MaxHeight,
		"mean_spread":   s.MeanSpread,
		"dominant_freq": s.DominantFreq,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tGRID\tFRAMES\tOUTPUT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Frames,
			run.Output,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(meta.ID))
	fmt.Fprintf(out, "kind:      %s\n", meta.Kind)
	fmt.Fprintf(out, "time:      %s\n", meta.Timestamp.Format(time.RFC3339))
	if meta.Input != "" {
		fmt.Fprintf(out, "input:     %s\n", meta.Input)
	}
	if meta.Output != "" {
		fmt.Fprintf(out, "output:    %s\n", meta.Output)
	}
	fmt.Fprintf(out, "grid:      %dx%d (%d particles)\n", meta.Width, meta.Height, meta.Particles)
	fmt.Fprintf(out, "frames:    %d\n", meta.Frames)
	if meta.Integrator != "" {
		fmt.Fprintf(out, "integrator: %s\n", meta.Integrator)
	}
	fmt.Fprintf(out, "elapsed:   %.2fs\n", meta.Elapsed)

	printMap(out, "params", meta.Params)
	printMap(out, "metrics", meta.Metrics)

	stats, err := st.LoadStats(meta.ID)
	if err != nil {
		return err
	}
	if len(stats) > 1 {
		heights := make([]float64, len(stats))
		for i, s := range stats {
			heights[i] = s.CentroidY
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("centroid height per frame"),
		))
	}
	return nil
}

func printMap(out io.Writer, title string, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6g\n", k, m[k])
	}
	w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tFRAMES\tSTIFFNESS\tDAMPING\tDT\tINTEGRATOR")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%g\t%g\t%g\t%s\n",
			name, p.Width, p.Height, p.Frames, p.Stiffness, p.Damping, p.Dt, p.Integrator)
	}
	return w.Flush()
}
