package render

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

// majorPixels is the minimum on-screen size of a major grid cell.
const majorPixels = 200

// GridSpacing returns the major and minor grid spacing for a zoom in pixels
// per world unit: the smallest power of ten spanning at least 200 pixels,
// and a tenth of it.
func GridSpacing(zoom float64) (major, minor float64) {
	major = math.Pow(10, math.Ceil(math.Log10(majorPixels/zoom)))
	return major, major / 10
}

// Label is a grid annotation positioned in CSS pixels. Axis is 'x' for
// labels along the horizontal axis and 'y' for the vertical one.
type Label struct {
	Text string
	Pos  r2.Vec
	Axis byte
}

const maxLabels = 256

// GridLabels places value labels on the major grid lines, pinned next to
// the axes and kept inside the view. Zero is only labelled on the x axis.
func GridLabels(cam dynamo.Camera, s dynamo.Surface) []Label {
	major, _ := GridSpacing(cam.DeviceZoom(s))
	cw, ch := s.CSSSize()
	half := cam.HalfExtent(s)
	xMin, xMax := cam.Center.X-half.X, cam.Center.X+half.X
	yMin, yMax := cam.Center.Y-half.Y, cam.Center.Y+half.Y
	axis := cam.WorldToScreen(s, r2.Vec{})

	var labels []Label

	startX := math.Floor(xMin/major) * major
	for i := 0; i < maxLabels; i++ {
		gx := startX + float64(i)*major
		if gx > xMax {
			break
		}
		px := (gx-cam.Center.X)*cam.Zoom + cw/2
		if px < 20 || px > cw-20 {
			continue
		}
		py := clamp(axis.Y+4, 2, ch-16)
		labels = append(labels, Label{Text: FormatNum(snapZero(gx, major)), Pos: r2.Vec{X: px, Y: py}, Axis: 'x'})
	}

	startY := math.Floor(yMin/major) * major
	for i := 0; i < maxLabels; i++ {
		gy := startY + float64(i)*major
		if gy > yMax {
			break
		}
		py := ch/2 - (gy-cam.Center.Y)*cam.Zoom
		if py < 10 || py > ch-10 {
			continue
		}
		v := snapZero(gy, major)
		if v == 0 {
			continue
		}
		px := clamp(axis.X+4, 2, cw-40)
		labels = append(labels, Label{Text: FormatNum(v), Pos: r2.Vec{X: px, Y: py}, Axis: 'y'})
	}
	return labels
}

func snapZero(v, major float64) float64 {
	if math.Abs(v) < major*1e-9 {
		return 0
	}
	return v
}

// FormatNum renders a grid value compactly: exponent form for very large or
// small magnitudes, otherwise a few significant digits.
func FormatNum(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e6 || abs < 0.001:
		return expString(v, 1)
	case abs >= 100:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case abs >= 1:
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return precisionString(v, 3)
}

// FormatZoom renders a zoom factor for the status line.
func FormatZoom(z float64) string {
	switch {
	case z >= 1e6:
		return expString(z, 1) + "x"
	case z >= 1000:
		return strconv.FormatFloat(z/1000, 'f', 1, 64) + "kx"
	case z >= 1:
		return strconv.FormatFloat(z, 'f', 1, 64) + "x"
	}
	return expString(z, 1) + "x"
}

// expString formats like 1.5e+6, without exponent padding.
func expString(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'e', digits, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + sign + exp
}

// precisionString keeps sig significant digits in fixed notation.
func precisionString(v float64, sig int) string {
	s := strconv.FormatFloat(v, 'e', sig-1, 64)
	_, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	decimals := sig - 1 - e
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatCoord renders a world coordinate with six significant digits,
// switching to exponent form outside [1e-6, 1e6).
func FormatCoord(v float64) string {
	const sig = 6
	if v == 0 {
		return "0.00000"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', sig-1, 64)
	_, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	if e < -6 || e >= sig {
		return expString(v, sig-1)
	}
	return precisionString(v, sig)
}
