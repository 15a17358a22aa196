package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/sim"
)

const svgBackground = "#0a0a0a"

// Bounds returns the box enclosing every trajectory point, padded by a
// tenth of its span on each side.
func Bounds(trajs []*sim.Trajectory) (lo, hi r2.Vec, ok bool) {
	for _, tr := range trajs {
		for _, p := range tr.Points {
			if !ok {
				lo, hi, ok = p, p, true
				continue
			}
			lo = r2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
			hi = r2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
		}
	}
	if !ok {
		return lo, hi, false
	}
	span := r2.Sub(hi, lo)
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	pad := r2.Scale(0.1, span)
	return r2.Sub(lo, pad), r2.Add(hi, pad), true
}

// WriteTrajectoriesSVG draws each trajectory as a path in its palette
// color, scaled to fill a width x height viewport with y pointing up.
func WriteTrajectoriesSVG(w io.Writer, trajs []*sim.Trajectory, width, height int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, svgBackground)

	lo, hi, ok := Bounds(trajs)
	if ok {
		span := r2.Sub(hi, lo)
		for _, tr := range trajs {
			if len(tr.Points) < 2 {
				continue
			}
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, svgColor(tr.Color))
			for i, p := range tr.Points {
				x := (p.X - lo.X) / span.X * float64(width)
				y := float64(height) - (p.Y-lo.Y)/span.Y*float64(height)
				if i == 0 {
					fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
				}
			}
			sb.WriteString("\"/>\n")
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func svgColor(c [3]float32) string {
	b := func(v float32) int { return int(math.Round(float64(max(0, min(1, v))) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", b(c[0]), b(c[1]), b(c[2]))
}
