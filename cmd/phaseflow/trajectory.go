package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/analysis"
	"github.com/san-kum/phaseflow/internal/export"
	"github.com/san-kum/phaseflow/internal/sim"
	"github.com/san-kum/phaseflow/internal/storage"
	"github.com/san-kum/phaseflow/internal/viz"
)

const (
	plotWidth  = 70
	plotHeight = 12
	lyapunovT  = 20.0
)

var (
	trajOrigins []string
	trajSteps   int
	trajDt      float64
	trajCSV     string
	trajSVG     string
	trajSave    bool
	trajPlot    bool

	sweepMin, sweepMax float64
	sweepSteps         int
	sweepOrigin        string
	sweepTransient     float64
	sweepRecord        float64
)

func newTrajectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trajectory",
		Short: "integrate trajectories and print statistics",
		RunE:  runTrajectory,
	}
	cmd.Flags().StringArrayVar(&trajOrigins, "origin", []string{"1,0"}, "origin x,y (repeatable)")
	cmd.Flags().IntVar(&trajSteps, "steps", 0, "points per trajectory (default from config)")
	cmd.Flags().Float64Var(&trajDt, "dt", 0, "integration step (default from config)")
	cmd.Flags().StringVar(&trajCSV, "csv", "", "write points to a CSV file, - for stdout")
	cmd.Flags().StringVar(&trajSVG, "svg", "", "write trajectories to an SVG file")
	cmd.Flags().BoolVar(&trajSave, "save", false, "save the run to the data directory")
	cmd.Flags().BoolVar(&trajPlot, "plot", true, "print terminal plots")
	return cmd
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "list saved trajectory runs",
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep a parameter and plot the settled x values",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	cmd.Flags().Float64Var(&sweepMin, "min", -1, "first parameter value")
	cmd.Flags().Float64Var(&sweepMax, "max", 1, "last parameter value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 60, "parameter values")
	cmd.Flags().StringVar(&sweepOrigin, "origin", "0.1,0.1", "origin x,y")
	cmd.Flags().Float64Var(&sweepTransient, "transient", 50, "settling time discarded per value")
	cmd.Flags().Float64Var(&sweepRecord, "record", 20, "recorded time per value")
	return cmd
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("steps") {
		cfg.Trajectory.Steps = trajSteps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Trajectory.Dt = trajDt
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	origins, err := parsePoints(trajOrigins)
	if err != nil {
		return err
	}

	s, ctrl, err := headless(cfg, log)
	if err != nil {
		return err
	}
	for _, o := range origins {
		s.AddTrajectory(o)
	}
	trajs := s.Trajectories()
	dt := cfg.Trajectory.Dt

	if trajCSV == "-" {
		return export.WriteTrajectoriesCSV(cmd.OutOrStdout(), trajs, dt)
	}

	out := cmd.OutOrStdout()
	dx, dy := s.Equations()
	fmt.Fprintf(out, "%s\n  dx/dt = %s\n  dy/dt = %s\n", ctrl.Preset(), dx, dy)
	if vals := s.Params().Values(); len(vals) > 0 {
		fmt.Fprintf(out, "  params: %s\n", formatParams(vals))
	}
	fmt.Fprintln(out)

	metrics := writeSummary(out, trajs, s, dt)

	if trajPlot {
		for i, tr := range trajs {
			if len(tr.Points) < 2 {
				continue
			}
			xs, _ := analysis.Components(tr.Points)
			fmt.Fprintln(out)
			fmt.Fprintln(out, asciigraph.Plot(downsample(xs, plotWidth),
				asciigraph.Height(plotHeight),
				asciigraph.Width(plotWidth),
				asciigraph.Caption(fmt.Sprintf("trajectory %d: x(t)", i))))

			canvas := viz.NewCanvas(plotWidth/2, plotHeight)
			canvas.PlotPath(tr.Points)
			fmt.Fprintf(out, "\nphase portrait %d\n%s", i, canvas.String())
		}
	}

	if trajCSV != "" {
		if err := writeFile(trajCSV, func(w io.Writer) error { return export.WriteTrajectoriesCSV(w, trajs, dt) }); err != nil {
			return err
		}
	}
	if trajSVG != "" {
		if err := writeFile(trajSVG, func(w io.Writer) error { return export.WriteTrajectoriesSVG(w, trajs, 800, 600) }); err != nil {
			return err
		}
	}
	if trajSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Preset:  ctrl.Preset(),
			DX:      dx,
			DY:      dy,
			Params:  s.Params().Values(),
			Dt:      dt,
			Steps:   cfg.Trajectory.Steps,
			Metrics: metrics,
		}, trajs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrun id: %s\n", runID)
	}
	return nil
}

// writeSummary prints one table row per trajectory and returns the metrics
// of the first one.
func writeSummary(out io.Writer, trajs []*sim.Trajectory, s *sim.Simulator, dt float64) map[string]float64 {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\torigin\tpoints\tx range\ty range\tlength\tperiod\tlyapunov\t")

	var metrics map[string]float64
	for i, tr := range trajs {
		sum := analysis.Summarize(tr.Points)
		xs, _ := analysis.Components(tr.Points)
		period, ok := analysis.DominantPeriod(xs, dt)
		periodText := "-"
		if ok {
			periodText = fmt.Sprintf("%.4g", period)
		}
		lambda := analysis.LyapunovExponent(s.Deriv(), tr.Origin, s.Time(), dt, lyapunovT, 1e-8)

		status := ""
		if tr.Truncated {
			status = " (escaped)"
		}
		fmt.Fprintf(w, "%d\t(%g, %g)\t%d%s\t[%.4g, %.4g]\t[%.4g, %.4g]\t%.4g\t%s\t%.4f\t\n",
			i, tr.Origin.X, tr.Origin.Y, sum.Points, status,
			sum.Min.X, sum.Max.X, sum.Min.Y, sum.Max.Y, sum.Length, periodText, lambda)

		if i == 0 {
			metrics = map[string]float64{
				"length":   sum.Length,
				"closure":  sum.Closure,
				"mean_x":   sum.Mean.X,
				"mean_y":   sum.Mean.Y,
				"lyapunov": lambda,
			}
			if ok {
				metrics["period"] = period
			}
		}
	}
	w.Flush()
	return metrics
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTRAJ\tSTEPS\tDT\tTIMESTAMP\t")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\t\n",
			r.ID, r.Preset, r.Trajectories, r.Steps, r.Dt, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadPoints(args[0])
	if err != nil {
		return err
	}

	paths := make(map[int][]r2.Vec)
	for _, row := range rows {
		paths[row.Trajectory] = append(paths[row.Trajectory], r2.Vec{X: row.X, Y: row.Y})
	}
	keys := make([]int, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	ordered := make([][]r2.Vec, len(keys))
	for i, k := range keys {
		ordered[i] = paths[k]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: dx/dt = %s, dy/dt = %s\n\n", meta.ID, meta.DX, meta.DY)

	canvas := viz.NewCanvas(plotWidth/2, plotHeight)
	canvas.PlotPaths(ordered)
	fmt.Fprint(out, canvas.String())

	for _, k := range keys {
		sum := analysis.Summarize(paths[k])
		fmt.Fprintf(out, "trajectory %d: %d points, length %.4g, centroid (%.4g, %.4g)\n",
			k, sum.Points, sum.Length, sum.Mean.X, sum.Mean.Y)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	origin, err := parsePoint(sweepOrigin)
	if err != nil {
		return err
	}
	s, _, err := headless(cfg, log)
	if err != nil {
		return err
	}
	if _, ok := s.Params().Param(args[0]); !ok {
		return fmt.Errorf("%q is not a parameter of this field (have %v)", args[0], s.Params().Names())
	}

	data := analysis.Sweep(s.Field(), s.Params(), analysis.SweepConfig{
		Param:     args[0],
		Min:       sweepMin,
		Max:       sweepMax,
		Steps:     sweepSteps,
		Origin:    origin,
		Dt:        cfg.Trajectory.Dt,
		Transient: sweepTransient,
		Record:    sweepRecord,
	})
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "x maxima vs %s in [%g, %g]\n", args[0], sweepMin, sweepMax)
	plot := analysis.SweepToASCII(data, plotWidth, plotHeight*2)
	if plot == "" {
		fmt.Fprintln(out, "no bounded orbits")
		return nil
	}
	fmt.Fprint(out, plot)
	return nil
}

// downsample keeps at most n evenly spaced values.
func downsample(v []float64, n int) []float64 {
	if len(v) <= n || n <= 0 {
		return v
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v[i*(len(v)-1)/(n-1)]
	}
	return out
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
