package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/softplot/internal/config"
)

var (
	dataDir    string
	configFile string
	noSave     bool

	// render / play
	input      string
	output     string
	fps        int
	intervalMs int
	size       string
	label      bool
	ticks      bool
	marker     string
	theme      string

	// simulate
	preset     string
	grid       string
	frameCount int
	integrator string
	stiffness  float64
	damping    float64
	substeps   int
	dropHeight float64

	// snapshot
	frameIndex int
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:")+" "+err.Error())
		os.Exit(1)
	}
}

// newRootCmd registers the softplot commands. With no subcommand it
// renders soft_sim.dat to video.mp4, the classic invocation. Building
// the tree resets every flag variable to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "softplot",
		Short:         "soft-body frame player and video renderer",
		Args:          cobra.NoArgs,
		RunE:          renderVideo,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run history directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&noSave, "no-save", false, "do not record the run in the history")
	addRenderFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a frame file to a video",
		Args:  cobra.NoArgs,
		RunE:  renderVideo,
	}
	addRenderFlags(renderCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play a frame file in the terminal",
		Args:  cobra.NoArgs,
		RunE:  playTerminal,
	}
	playCmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	playCmd.Flags().IntVar(&intervalMs, "interval", config.DefaultIntervalMs, "milliseconds between frames")
	playCmd.Flags().StringVar(&theme, "theme", "classic", "player theme")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate a falling soft body and write a frame file",
		Args:  cobra.NoArgs,
		RunE:  simulate,
	}
	simulateCmd.Flags().StringVar(&preset, "preset", "", "simulation preset")
	simulateCmd.Flags().StringVar(&grid, "grid", "10x10", "grid size (WxH)")
	simulateCmd.Flags().IntVar(&frameCount, "frames", config.DefaultFrames, "frames to record")
	simulateCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	simulateCmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring stiffness")
	simulateCmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "spring damping")
	simulateCmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "steps between recorded frames")
	simulateCmd.Flags().Float64Var(&dropHeight, "drop", config.DefaultDroppingHeight, "dropping height")
	simulateCmd.Flags().StringVar(&output, "output", config.DefaultInput, "frame file to write")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "validate a frame file and summarise its motion",
		Args:  cobra.NoArgs,
		RunE:  inspect,
	}
	inspectCmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	inspectCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "sample rate for the spectrum")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render one frame to png or svg",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	snapshotCmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	snapshotCmd.Flags().IntVar(&frameIndex, "frame", 0, "frame index")
	snapshotCmd.Flags().StringVar(&output, "output", "frame.png", "output image (.png or .svg)")
	snapshotCmd.Flags().StringVar(&size, "size", "640x480", "image size (WxH)")
	snapshotCmd.Flags().BoolVar(&label, "label", false, "draw the frame number")
	snapshotCmd.Flags().StringVar(&marker, "marker", config.DefaultMarker, "marker colour")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "dump parsed frames as JSON",
		Args:  cobra.NoArgs,
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	exportJSONCmd.Flags().StringVar(&output, "output", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv",
		Short: "dump parsed frames as long-form CSV",
		Args:  cobra.NoArgs,
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	exportCSVCmd.Flags().StringVar(&output, "output", "", "output file (default stdout)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list simulation presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "softplot.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(renderCmd, playCmd, simulateCmd, inspectCmd, snapshotCmd, exportJSONCmd, exportCSVCmd, runsCmd, showCmd, presetsCmd, initConfigCmd)
	return rootCmd
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&input, "input", config.DefaultInput, "frame file")
	cmd.Flags().StringVar(&output, "output", config.DefaultOutput, "output video (.mp4 .avi .gif .mov .mkv .webm)")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "video frame rate")
	cmd.Flags().StringVar(&size, "size", "640x480", "video size (WxH)")
	cmd.Flags().BoolVar(&label, "label", false, "draw the frame number")
	cmd.Flags().BoolVar(&ticks, "ticks", false, "show axis tick labels")
	cmd.Flags().StringVar(&marker, "marker", config.DefaultMarker, "marker colour")
}

// resolveConfig applies defaults, then --config, then --preset, then
// any flag set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Lookup("preset") != nil && preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Simulation = p
	}

	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("interval") {
		cfg.IntervalMs = intervalMs
	}
	if flags.Changed("size") {
		w, h, err := parseDims(size)
		if err != nil {
			return nil, fmt.Errorf("--size: %w", err)
		}
		cfg.Render.Width, cfg.Render.Height = w, h
	}
	if flags.Changed("label") {
		cfg.Render.FrameLabel = label
	}
	if flags.Changed("ticks") {
		cfg.Render.ShowTicks = ticks
	}
	if flags.Changed("marker") {
		cfg.Render.Marker = marker
	}
	if flags.Changed("theme") {
		cfg.Render.Theme = theme
	}

	sim := &cfg.Simulation
	if flags.Changed("grid") {
		w, h, err := parseDims(grid)
		if err != nil {
			return nil, fmt.Errorf("--grid: %w", err)
		}
		sim.Width, sim.Height = w, h
	}
	if flags.Changed("frames") {
		sim.Frames = frameCount
	}
	if flags.Changed("integrator") {
		sim.Integrator = integrator
	}
	if flags.Changed("stiffness") {
		sim.Stiffness = stiffness
	}
	if flags.Changed("damping") {
		sim.Damping = damping
	}
	if flags.Changed("substeps") {
		sim.Substeps = substeps
	}
	if flags.Changed("drop") {
		sim.DroppingHeight = dropHeight
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDims(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("expected WxH, got %q", s)
	}
	if w < 0 || h < 0 {
		return 0, 0, fmt.Errorf("negative dimensions in %q", s)
	}
	return w, h, nil
}
