package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/compute"
	"github.com/san-kum/phaseflow/internal/config"
	"github.com/san-kum/phaseflow/internal/control"
	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/metrics"
	"github.com/san-kum/phaseflow/internal/render"
	"github.com/san-kum/phaseflow/internal/sim"
)

const (
	historyCapacity = 120
	maxTerminalFPS  = 30
	minCanvasCols   = 16
	minCanvasRows   = 6
)

type TickMsg time.Time

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	sim  *sim.Simulator
	ctrl *control.Controller
	dev  *compute.CPUDevice
	pipe *render.Pipeline
	fps  *control.FPSMeter
	log  *slog.Logger

	theme  Theme
	styles styles

	cols, rows int
	frame    string
	history  *metrics.History
	vis      *metrics.Visibility
	coverage *metrics.Coverage
	interval time.Duration
	showHelp bool
}

// NewModel builds a viewer on a software device with the given preset
// loaded.
func NewModel(cfg *config.Config, preset string, log *slog.Logger) (*Model, error) {
	if log == nil {
		log = slog.Default()
	}
	cols, rows := 80, 24
	surface := canvasSurface(cols, rows)

	dev := compute.NewCPUDevice(surface.Width, surface.Height)
	pipe, err := render.New(dev, render.OptionsFromConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	s := sim.New(pipe, sim.FromConfig(cfg), log)
	if err := s.Resize(surface); err != nil {
		return nil, err
	}
	history, vis, coverage := metrics.NewHistory(historyCapacity), metrics.NewVisibility(), metrics.NewCoverage()
	s.AddObserver(metrics.Set{history, vis, coverage})
	ctrl := control.New(s, pipe, cfg, log)
	if err := ctrl.LoadPreset(preset); err != nil {
		return nil, err
	}

	fps := cfg.Window.FPS
	if fps <= 0 || fps > maxTerminalFPS {
		fps = maxTerminalFPS
	}
	return &Model{
		sim:      s,
		ctrl:     ctrl,
		dev:      dev,
		pipe:     pipe,
		fps:      control.NewFPSMeter(time.Now()),
		log:      log,
		theme:    ThemeNight,
		styles:   newStyles(ThemeNight),
		cols:     cols,
		rows:     rows,
		history:  history,
		vis:      vis,
		coverage: coverage,
		interval: time.Second / time.Duration(fps),
	}, nil
}

// canvasSurface sizes the portrait for a terminal of cols x rows cells,
// leaving room for the stats panel. Each cell holds two pixels stacked.
func canvasSurface(cols, rows int) dynamo.Surface {
	w := max(cols-panelWidth-2, minCanvasCols)
	h := max(rows-1, minCanvasRows)
	return dynamo.Surface{Width: w, Height: h * 2, DPR: 1}
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the simulation on ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		if err := m.sim.Resize(canvasSurface(m.cols, m.rows)); err != nil {
			m.log.Warn("resize failed", "err", err)
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.ctrl.Editor.Active() {
			m.editKey(msg)
			break
		}
		m.key(msg)
		if m.ctrl.Quit() {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) {
	k := msg.String()
	switch k {
	case " ":
		k = "space"
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
		return
	case "?":
		m.showHelp = !m.showHelp
		return
	}
	m.ctrl.Key(k)
}

func (m *Model) editKey(msg tea.KeyMsg) {
	ed := &m.ctrl.Editor
	switch msg.Type {
	case tea.KeyEsc:
		ed.Close()
	case tea.KeyEnter:
		if err := m.ctrl.CommitEditor(); err != nil {
			m.log.Debug("equation rejected", "err", err)
		}
	case tea.KeyTab:
		ed.Next()
	case tea.KeyBackspace:
		ed.Backspace()
	case tea.KeyDelete:
		ed.Delete()
	case tea.KeyLeft:
		ed.Left()
	case tea.KeyRight:
		ed.Right()
	case tea.KeyHome:
		ed.Home()
	case tea.KeyEnd:
		ed.End()
	case tea.KeySpace:
		ed.Insert(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			ed.Insert(r)
		}
	}
}

// mouse maps a cell position to the center of its two pixels.
func (m *Model) mouse(msg tea.MouseMsg) {
	p := r2.Vec{X: float64(msg.X) + 0.5, Y: float64(msg.Y)*2 + 1}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.Wheel(p, -1)
		return
	case tea.MouseButtonWheelDown:
		m.ctrl.Wheel(p, 1)
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.ctrl.PointerDown(p, control.ButtonLeft, msg.Shift)
		case tea.MouseButtonRight:
			m.ctrl.PointerDown(p, control.ButtonRight, msg.Shift)
		}
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		m.ctrl.PointerMove(p)
		m.ctrl.PointerUp()
	}
}

func (m *Model) step(now time.Time) {
	if err := m.sim.Frame(); err != nil {
		m.log.Error("frame failed", "err", err)
		return
	}
	m.fps.Tick(now)
	m.frame = Blocks(m.dev.Screen())
}

// View renders the portrait beside the stats panel.
func (m *Model) View() string {
	st := m.ctrl.Status(m.fps.FPS())
	sty := m.styles

	var s strings.Builder
	s.WriteString(sty.header.Render("PHASEFLOW :: "+strings.ToUpper(st.Preset)) + "\n")
	if st.Paused {
		s.WriteString(sty.paused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(sty.running.Render("RUNNING") + "\n\n")
	}

	if m.ctrl.Editor.Active() {
		s.WriteString(m.viewEditor() + "\n")
	} else {
		s.WriteString(sty.label.Render("dx/dt") + sty.value.Render(st.DX) + "\n")
		s.WriteString(sty.label.Render("dy/dt") + sty.value.Render(st.DY) + "\n")
	}
	if st.Err != "" {
		s.WriteString(sty.err.Render(st.Err) + "\n")
	}
	s.WriteString("\n")

	s.WriteString(sty.label.Render("Time") + sty.value.Render(fmt.Sprintf("%.2f", st.Time)) + "\n")
	s.WriteString(sty.label.Render("Speed") + sty.value.Render(fmt.Sprintf("%.1fx", st.Speed)) + "\n")
	s.WriteString(sty.label.Render("Zoom") + sty.value.Render(st.Zoom) + "\n")
	s.WriteString(sty.label.Render("View") + sty.value.Render(m.viewRange()) + "\n")
	if st.Cursor != "" {
		s.WriteString(sty.label.Render("Cursor") + sty.value.Render(st.Cursor) + "\n")
	}
	s.WriteString(sty.label.Render("Traj") + sty.value.Render(fmt.Sprintf("%d", st.Trajectories)) + "\n")
	s.WriteString(sty.label.Render("FPS") + sty.value.Render(fmt.Sprintf("%d", st.FPS)) + "\n")

	s.WriteString(sty.label.Render("Visible") + sty.value.Render(fmt.Sprintf("%.0f%% (%.0f%% in view)", m.vis.Value()*100, m.coverage.Value()*100)) + "\n")

	hist := m.history.Values()
	s.WriteString(sty.label.Render("|v|") + sty.spark.Render(Sparkline(hist, panelWidth-14)) + "\n")
	if len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(3), asciigraph.Width(panelWidth-12), asciigraph.Caption("|v| max"))
		s.WriteString("\n" + sty.graph.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(st.Params) == 0 {
		s.WriteString(sty.label.Render("  (none)") + "\n")
	}
	for _, p := range st.Params {
		line := fmt.Sprintf("%-8s %s %6.2f", p.Name, ParamBar(p.Value, -5, 5, 10), p.Value)
		if p.Selected {
			s.WriteString(sty.selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + sty.value.Render(line) + "\n")
		}
	}
	s.WriteString(sty.help.Render("SP:Pause R:Reset C:Clear Q:Quit\nG/N/P:Layers  [ ]:Preset  E:Edit\n↑↓←→:Tune  T:Theme  ?:Help"))

	panel := sty.panel.Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.frame, panel)
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m *Model) viewEditor() string {
	var s strings.Builder
	for i, label := range []string{"dx/dt", "dy/dt"} {
		text, cur := m.ctrl.Editor.Field(i)
		runes := []rune(text)
		style := m.styles.value
		if m.ctrl.Editor.Focus() == i {
			style = m.styles.selected
			text = string(runes[:cur]) + "▏" + string(runes[cur:])
		}
		s.WriteString(m.styles.label.Render(label) + style.Render(text) + "\n")
	}
	return s.String()
}

func (m *Model) viewRange() string {
	cam, surf := m.sim.Camera(), m.sim.Surface()
	half := cam.HalfExtent(surf)
	return fmt.Sprintf("x %s..%s y %s..%s",
		render.FormatNum(cam.Center.X-half.X), render.FormatNum(cam.Center.X+half.X),
		render.FormatNum(cam.Center.Y-half.Y), render.FormatNum(cam.Center.Y+half.Y))
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Pause/Resume            ║
║  R         - Reset view              ║
║  C         - Clear trajectories      ║
║  Backspace - Remove last trajectory  ║
║  F G N P   - Field/grid/nullclines/  ║
║              particles               ║
║  [ ]       - Previous/next preset    ║
║  Up/Down   - Select parameter        ║
║  Left/Right- Tune parameter (±0.1)   ║
║  + -       - Speed                   ║
║  , .       - Trail length            ║
║  E / Tab   - Edit equations          ║
║  T         - Cycle themes            ║
║  Q         - Quit                    ║
║  Drag      - Pan, wheel zooms        ║
║  Shift+Click - Seed trajectory       ║
╚══════════════════════════════════════╝`

// Run starts the terminal viewer and blocks until it exits.
func Run(cfg *config.Config, preset string, log *slog.Logger) error {
	m, err := NewModel(cfg, preset, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
