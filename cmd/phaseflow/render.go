package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/control"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/export"
	"github.com/san-kum/phaseflow/internal/render"
	"github.com/san-kum/phaseflow/internal/sim"
)

var (
	renderWidth   int
	renderHeight  int
	renderFrames  int
	renderOut     string
	renderSVG     string
	renderOrigins []string
	gifWidth      int
	gifEvery      int
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render frames headless to PNG or GIF",
		RunE:  runRender,
	}
	cmd.Flags().IntVar(&renderWidth, "width", 640, "image width in pixels")
	cmd.Flags().IntVar(&renderHeight, "height", 400, "image height in pixels")
	cmd.Flags().IntVar(&renderFrames, "frames", 120, "frames to simulate")
	cmd.Flags().StringVarP(&renderOut, "out", "o", "phaseflow.png", "output file (.png or .gif)")
	cmd.Flags().StringVar(&renderSVG, "svg", "", "also write trajectories as SVG")
	cmd.Flags().StringArrayVar(&renderOrigins, "traj", nil, "trajectory origin x,y (repeatable)")
	cmd.Flags().IntVar(&gifWidth, "gif-width", 320, "maximum GIF frame width")
	cmd.Flags().IntVar(&gifEvery, "gif-every", 2, "record every n-th frame in a GIF")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	origins, err := parsePoints(renderOrigins)
	if err != nil {
		return err
	}

	surface := dynamo.Surface{Width: renderWidth, Height: renderHeight, DPR: 1}
	if !surface.Valid() {
		return fmt.Errorf("%w: %dx%d", dynamo.ErrInvalidSurface, renderWidth, renderHeight)
	}
	dev := compute.NewCPUDevice(renderWidth, renderHeight)
	pipe, err := render.New(dev, render.OptionsFromConfig(cfg), log)
	if err != nil {
		return err
	}
	defer pipe.Close()

	s := sim.New(pipe, sim.FromConfig(cfg), log)
	if err := s.Resize(surface); err != nil {
		return err
	}
	ctrl := control.New(s, pipe, cfg, log)
	if err := ctrl.LoadPreset(cfg.Preset); err != nil {
		return err
	}
	for _, o := range origins {
		s.AddTrajectory(o)
	}

	isGIF := strings.EqualFold(filepath.Ext(renderOut), ".gif")
	rec := export.NewGIFRecorder(gifWidth, 4)
	for i := 0; i < max(renderFrames, 1); i++ {
		if err := s.Frame(); err != nil {
			return err
		}
		if isGIF && i%max(gifEvery, 1) == 0 {
			rec.Add(dev.Screen())
		}
	}

	if isGIF {
		err = rec.Save(renderOut)
	} else {
		img := dev.Screen()
		if pipe.Options().ShowGrid {
			img = export.Annotate(img, render.GridLabels(s.Camera(), s.Surface()), surface.DPR)
		}
		err = export.SavePNG(renderOut, img)
	}
	if err != nil {
		return err
	}
	log.Info("rendered", "out", renderOut, "frames", renderFrames, "time", s.Time())

	if renderSVG != "" {
		f, err := os.Create(renderSVG)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteTrajectoriesSVG(f, s.Trajectories(), renderWidth, renderHeight); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", renderOut)
	return nil
}
