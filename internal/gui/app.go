package gui

import (
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/control"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/render"
	"github.com/san-kum/phaseflow/internal/sim"
)

// Theme colors
var (
	ColPanel   = rl.NewColor(10, 10, 14, 200)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(70, 70, 70, 255)
	ColLabel   = rl.NewColor(160, 160, 170, 200)
	ColError   = rl.NewColor(255, 90, 90, 255)
)

const fontPath = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"

type App struct {
	Sim  *sim.Simulator
	Ctrl *control.Controller
	Font rl.Font

	log     *slog.Logger
	dev     *compute.OpenGLDevice
	pipe    *render.Pipeline
	fps     *control.FPSMeter
	surface dynamo.Surface
}

func initWindow(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), "phaseflow")
	rl.SetTargetFPS(int32(cfg.Window.FPS))
	rl.SetExitKey(0)
}

// loadFont falls back to the built-in font when the system font is missing.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens the window, loads preset and blocks until the window is closed.
func Run(cfg *config.Config, preset string, log *slog.Logger) error {
	initWindow(cfg)
	defer rl.CloseWindow()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Ctrl.LoadPreset(preset); err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

// NewApp wires the simulator to an OpenGL pipeline on the current window.
func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	surface := currentSurface()
	dev, err := compute.NewOpenGLDevice(surface.Width, surface.Height)
	if err != nil {
		return nil, err
	}
	pipe, err := render.New(dev, render.OptionsFromConfig(cfg), log)
	if err != nil {
		dev.Cleanup()
		return nil, err
	}

	s := sim.New(pipe, sim.FromConfig(cfg), log)
	if err := s.Resize(surface); err != nil {
		pipe.Close()
		dev.Cleanup()
		return nil, err
	}

	return &App{
		Sim:     s,
		Ctrl:    control.New(s, pipe, cfg, log),
		Font:    loadFont(),
		log:     log,
		dev:     dev,
		pipe:    pipe,
		fps:     control.NewFPSMeter(time.Now()),
		surface: surface,
	}, nil
}

func (a *App) Close() {
	a.pipe.Close()
	a.dev.Cleanup()
	rl.UnloadFont(a.Font)
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.Ctrl.Quit() {
		a.Update()
		a.Draw()
	}
}

// currentSurface reads the framebuffer size and the ratio of framebuffer to
// window pixels.
func currentSurface() dynamo.Surface {
	w, h := rl.GetRenderWidth(), rl.GetRenderHeight()
	dpr := 1.0
	if sw := rl.GetScreenWidth(); sw > 0 {
		dpr = float64(w) / float64(sw)
	}
	return dynamo.Surface{Width: w, Height: h, DPR: dpr}
}

func (a *App) Update() {
	if s := currentSurface(); s != a.surface && s.Valid() {
		if err := a.Sim.Resize(s); err != nil {
			a.log.Warn("resize failed", "err", err)
		} else {
			a.surface = s
		}
	}

	if a.Ctrl.Editor.Active() {
		a.updateEditor()
	} else {
		a.updateKeys()
		a.updatePointer()
	}
}

var namedKeys = map[int32]string{
	rl.KeySpace:     "space",
	rl.KeyTab:       "tab",
	rl.KeyEnter:     "enter",
	rl.KeyEscape:    "esc",
	rl.KeyBackspace: "backspace",
	rl.KeyUp:        "up",
	rl.KeyDown:      "down",
	rl.KeyLeft:      "left",
	rl.KeyRight:     "right",
}

func (a *App) updateKeys() {
	for k := rl.GetKeyPressed(); k != 0; k = rl.GetKeyPressed() {
		if name, ok := namedKeys[k]; ok {
			a.Ctrl.Key(name)
		}
	}
	for _, k := range []int32{rl.KeyLeft, rl.KeyRight} {
		if rl.IsKeyPressedRepeat(k) {
			a.Ctrl.Key(namedKeys[k])
		}
	}
	for r := rl.GetCharPressed(); r != 0; r = rl.GetCharPressed() {
		if r != ' ' {
			a.Ctrl.Key(string(rune(r)))
		}
	}
}

func (a *App) updateEditor() {
	ed := &a.Ctrl.Editor
	pressed := func(k int32) bool { return rl.IsKeyPressed(k) || rl.IsKeyPressedRepeat(k) }

	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		ed.Close()
		return
	case rl.IsKeyPressed(rl.KeyEnter):
		if err := a.Ctrl.CommitEditor(); err != nil {
			a.log.Debug("equation rejected", "err", err)
		}
		return
	case rl.IsKeyPressed(rl.KeyTab):
		ed.Next()
	case pressed(rl.KeyBackspace):
		ed.Backspace()
	case pressed(rl.KeyDelete):
		ed.Delete()
	case pressed(rl.KeyLeft):
		ed.Left()
	case pressed(rl.KeyRight):
		ed.Right()
	case rl.IsKeyPressed(rl.KeyHome):
		ed.Home()
	case rl.IsKeyPressed(rl.KeyEnd):
		ed.End()
	}
	for r := rl.GetCharPressed(); r != 0; r = rl.GetCharPressed() {
		ed.Insert(rune(r))
	}
}

func (a *App) updatePointer() {
	m := rl.GetMousePosition()
	p := r2.Vec{X: float64(m.X), Y: float64(m.Y)}
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.Ctrl.PointerDown(p, control.ButtonLeft, shift)
	}
	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		a.Ctrl.PointerDown(p, control.ButtonRight, shift)
	}
	a.Ctrl.PointerMove(p)
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.Ctrl.PointerUp()
	}

	// raylib reports wheel-up as positive; the controller expects
	// scroll-down positive.
	if w := rl.GetMouseWheelMove(); w != 0 {
		a.Ctrl.Wheel(p, -float64(w))
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	// Flush raylib's batch before the pipeline takes the context.
	rl.DrawRenderBatchActive()
	if err := a.Sim.Frame(); err != nil {
		a.log.Error("frame failed", "err", err)
	}
	a.dev.ResetState()

	if a.pipe.Options().ShowGrid {
		a.drawGridLabels()
	}
	a.DrawHUD()
	if a.Ctrl.Editor.Active() {
		a.drawEditor()
	}

	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) measure(text string, size int) int {
	return int(rl.MeasureTextEx(a.Font, text, float32(size), 1).X)
}

func (a *App) drawGridLabels() {
	for _, l := range render.GridLabels(a.Sim.Camera(), a.Sim.Surface()) {
		a.drawText(l.Text, int(l.Pos.X), int(l.Pos.Y), 12, ColLabel)
	}
}

func (a *App) DrawHUD() {
	st := a.Ctrl.Status(a.fps.Tick(time.Now()))
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()

	rl.DrawRectangle(16, 16, 420, int32(112+18*boolInt(st.Err != "")), ColPanel)
	a.drawText("phaseflow", 28, 24, 20, ColSelect)
	a.drawText(":: "+st.Preset, 28+a.measure("phaseflow", 20)+8, 28, 14, ColText)
	a.drawText("dx/dt = "+st.DX, 28, 52, 14, ColAccent)
	a.drawText("dy/dt = "+st.DY, 28, 70, 14, ColAccent)
	if st.Err != "" {
		a.drawText(st.Err, 28, 88, 14, ColError)
	}
	if line := st.ParamLine(); line != "" {
		a.drawText(line, 28, 110+18*boolInt(st.Err != ""), 14, ColText)
	}

	status := "RUNNING"
	col := ColSelect
	if st.Paused {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, w-a.measure(status, 16)-24, 24, 16, col)

	a.drawText(st.Line(), 24, h-44, 14, ColText)
	a.drawText("[SPACE] PAUSE  [R] RESET  [C] CLEAR  [G] GRID  [N] NULLCLINES  [P] PARTICLES  [E] EDIT  [ / ] PRESET  SHIFT+CLICK TRAJECTORY",
		24, h-24, 12, ColTextDim)
}

func (a *App) drawEditor() {
	w := rl.GetScreenWidth()
	x, y := 16, 150
	rl.DrawRectangle(int32(x), int32(y), int32(min(w-32, 720)), 92, ColPanel)
	labels := [2]string{"dx/dt = ", "dy/dt = "}
	for i := 0; i < 2; i++ {
		text, cur := a.Ctrl.Editor.Field(i)
		col := ColText
		if a.Ctrl.Editor.Focus() == i {
			col = ColSelect
		}
		ty := y + 12 + 24*i
		a.drawText(labels[i]+text, x+12, ty, 16, col)
		if a.Ctrl.Editor.Focus() == i {
			cx := x + 12 + a.measure(labels[i]+string([]rune(text)[:cur]), 16)
			rl.DrawRectangle(int32(cx), int32(ty), 2, 16, ColSelect)
		}
	}
	a.drawText("[ENTER] APPLY  [TAB] SWITCH  [ESC] CANCEL", x+12, y+74, 12, ColTextDim)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
