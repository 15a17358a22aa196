package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/phaseflow/internal/render"
)

// LabelColor is the grid label color of snapshots.
var LabelColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}

// Annotate returns a copy of img with labels drawn in basicfont. Label
// positions are CSS pixels and are scaled by dpr.
func Annotate(img *image.RGBA, labels []render.Label, dpr float64) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	if dpr <= 0 {
		dpr = 1
	}

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: out, Src: image.NewUniform(LabelColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for _, l := range labels {
		x, y := int(l.Pos.X*dpr), int(l.Pos.Y*dpr)
		d.Dot = fixed.P(x, y+ascent)
		d.DrawString(l.Text)
	}
	return out
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
