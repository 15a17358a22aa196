package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/control"
	"github.com/san-kum/phaseflow/internal/gui"
	"github.com/san-kum/phaseflow/internal/sim"
	"github.com/san-kum/phaseflow/internal/viz"
)

var (
	configFile string
	logLevel   string
	dataDir    string
	preset     string
	dxExpr     string
	dyExpr     string
	paramSets  []string
	particles  int
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "phaseflow",
		Short:         "interactive planar vector field explorer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&dataDir, "data", ".phaseflow", "data directory for saved runs")
	pf.StringVar(&preset, "preset", "", "preset to load")
	pf.StringVar(&dxExpr, "dx", "", "dx/dt expression, overrides the preset")
	pf.StringVar(&dyExpr, "dy", "", "dy/dt expression, overrides the preset")
	pf.StringArrayVar(&paramSets, "param", nil, "parameter value as name=value (repeatable)")
	pf.IntVar(&particles, "particles", 0, "particle count")
	pf.IntVar(&frameRate, "fps", 0, "target frame rate")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the OpenGL window",
		RunE:  runGUI,
	}

	var tuiLogFile string
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "explore in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			w, closeLog, err := openLogFile(tuiLogFile)
			if err != nil {
				return err
			}
			defer closeLog()
			log, err := newLogger(logLevel, w)
			if err != nil {
				return err
			}
			return viz.Run(cfg, cfg.Preset, log)
		},
	}
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "append logs to this file, logs are dropped when unset")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(guiCmd, tuiCmd, presetsCmd,
		newRenderCmd(), newCheckCmd(), newTrajectoryCmd(), newRunsCmd(), newPlotCmd(), newSweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	return gui.Run(cfg, cfg.Preset, log)
}

// setup loads the configuration, applies the command line overrides that
// were set and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	log, err := newLogger(logLevel, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Preset = preset
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = particles
	}
	if flags.Changed("fps") {
		cfg.Window.FPS = frameRate
	}
	if dxExpr != "" || dyExpr != "" || len(paramSets) > 0 {
		if err := applyOverrides(cfg); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log.Debug("config loaded", "path", configFile, "preset", cfg.Preset)
	return cfg, log, nil
}

// applyOverrides folds --dx, --dy and --param into a user preset derived
// from the selected one so every front-end sees them.
func applyOverrides(cfg *config.Config) error {
	base, ok := cfg.LookupPreset(cfg.Preset)
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrUnknownPreset, cfg.Preset)
	}
	p := base
	p.Params = make(map[string]float64, len(base.Params))
	for k, v := range base.Params {
		p.Params[k] = v
	}
	if dxExpr != "" {
		p.DX = dxExpr
	}
	if dyExpr != "" {
		p.DY = dyExpr
	}
	for _, kv := range paramSets {
		name, value, err := parseAssignment(kv)
		if err != nil {
			return err
		}
		p.Params[name] = value
	}
	if p.DX != base.DX || p.DY != base.DY {
		p.Name = "custom"
	}

	if cfg.Presets == nil {
		cfg.Presets = make(map[string]config.Preset)
	}
	cfg.Presets[cfg.Preset] = p
	return nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// openLogFile opens path for appending. An empty path discards logs.
func openLogFile(path string) (io.Writer, func() error, error) {
	if path == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

// headless builds a simulator without a renderer, with the configured
// preset loaded.
func headless(cfg *config.Config, log *slog.Logger) (*sim.Simulator, *control.Controller, error) {
	s := sim.New(nil, sim.FromConfig(cfg), log)
	ctrl := control.New(s, nil, cfg, log)
	if err := ctrl.LoadPreset(cfg.Preset); err != nil {
		return nil, nil, err
	}
	return s, ctrl, nil
}

func parseAssignment(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid parameter %q, want name=value", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return name, v, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (r2.Vec, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return r2.Vec{}, fmt.Errorf("invalid point %q, want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return r2.Vec{X: x, Y: y}, nil
}

func parsePoints(list []string) ([]r2.Vec, error) {
	pts := make([]r2.Vec, 0, len(list))
	for _, s := range list {
		p, err := parsePoint(s)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range cfg.PresetNames() {
		p, _ := cfg.LookupPreset(name)
		fmt.Fprintf(out, "%-16s %s\n", name, p.Name)
		fmt.Fprintf(out, "  dx/dt = %s\n  dy/dt = %s\n", p.DX, p.DY)
		if len(p.Params) > 0 {
			fmt.Fprintf(out, "  params: %s\n", formatParams(p.Params))
		}
	}
	return nil
}

func formatParams(params map[string]float64) string {
	parts := make([]string, 0, len(params))
	for _, name := range sortedKeys(params) {
		parts = append(parts, fmt.Sprintf("%s=%g", name, params[name]))
	}
	return strings.Join(parts, " ")
}
