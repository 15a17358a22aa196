package export

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// GIFRecorder collects frames for an animated GIF. Frames wider than
// MaxWidth are scaled down.
type GIFRecorder struct {
	MaxWidth int
	// Delay between frames in hundredths of a second.
	Delay  int
	frames []*image.Paletted
}

func NewGIFRecorder(maxWidth, delay int) *GIFRecorder {
	return &GIFRecorder{MaxWidth: maxWidth, Delay: delay}
}

// Add quantizes img to the web palette and appends it.
func (r *GIFRecorder) Add(img image.Image) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if r.MaxWidth > 0 && w > r.MaxWidth {
		h = max(1, h*r.MaxWidth/w)
		w = r.MaxWidth
	}

	src := img
	if w != b.Dx() {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		src = scaled
	}

	frame := image.NewPaletted(image.Rect(0, 0, w, h), palette.WebSafe)
	xdraw.FloydSteinberg.Draw(frame, frame.Bounds(), src, src.Bounds().Min)
	r.frames = append(r.frames, frame)
}

func (r *GIFRecorder) Len() int { return len(r.frames) }

// Encode writes the recorded frames as a looping animation.
func (r *GIFRecorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	if err := gif.EncodeAll(w, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// Save writes the animation to path.
func (r *GIFRecorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
