// Package tui provides the live terminal view: a solver session
// animated with bubbletea, with pause, speed and reset controls.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	historyLen = 240
	trailLen   = 400
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type point struct {
	x, y float64
}

type model struct {
	name   string
	sys    ode.System
	integ  ode.Integrator
	solver *solve.Solver
	y0     ode.State
	dt     float64

	paused   bool
	diverged bool
	speed    float64
	history  []float64
	trail    []point
	e0       float64
	hasE     bool

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func newModel(name string, sys ode.System, integ ode.Integrator, solver *solve.Solver, y0 ode.State, dt float64) model {
	m := model{
		name:    name,
		sys:     sys,
		integ:   integ,
		solver:  solver,
		y0:      y0.Clone(),
		dt:      dt,
		speed:   1.0,
		history: make([]float64, 0, historyLen),
		trail:   make([]point, 0, trailLen),
		width:   80,
		height:  24,
	}
	if h, ok := sys.(ode.Hamiltonian); ok {
		m.hasE = true
		m.e0 = h.Energy(y0)
	}
	m.record(y0)
	return m
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.diverged {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now

			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				m.step()
				if m.diverged {
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		if !m.diverged {
			m.paused = !m.paused
		}
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	case "r":
		m.reset()
	}
	return m, nil
}

func (m *model) step() {
	y := m.solver.Step(m.dt)
	if !y.IsValid() {
		m.diverged = true
		m.paused = true
		return
	}
	m.record(y)
}

func (m *model) record(y ode.State) {
	m.history = append(m.history, y[0])
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
	if len(y) >= 2 {
		m.trail = append(m.trail, point{y[0], y[1]})
		if len(m.trail) > trailLen {
			m.trail = m.trail[1:]
		}
	}
}

func (m *model) reset() {
	m.solver.SetInitialValue(0, m.y0)
	m.history = m.history[:0]
	m.trail = m.trail[:0]
	m.paused = false
	m.diverged = false
	m.speed = 1.0
	m.lastFrame = time.Time{}
	if m.hasE {
		m.e0 = 0
		if h, ok := m.sys.(ode.Hamiltonian); ok {
			m.e0 = h.Energy(m.y0)
		}
	}
	m.record(m.y0)
}

func (m model) View() string {
	cw := m.width - 6
	ch := m.height - 18
	if cw < 50 {
		cw = 50
	}
	if ch < 8 {
		ch = 8
	}

	var b strings.Builder
	b.WriteString("\n")

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.diverged:
		statusIcon = magenta.Render("✖")
		statusText = magenta.Render("diverged")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.name), dim.Render(m.integ.Name()), statusText))

	y := m.solver.State()
	b.WriteString(fmt.Sprintf("   %s %s   %s %s   %s %s   %s %s\n\n",
		dim.Render("t"), white.Render(fmt.Sprintf("%.2f", m.solver.Time())),
		dim.Render("|y|"), white.Render(fmt.Sprintf("%.3f", y.Norm())),
		dim.Render("speed"), white.Render(fmt.Sprintf("%gx", m.speed)),
		dim.Render("fps"), white.Render(fmt.Sprintf("%.0f", m.fps))))

	canvas := make([][]rune, ch)
	for i := range canvas {
		canvas[i] = make([]rune, cw)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	if m.sys.Dim() >= 2 {
		m.drawPhase(canvas, cw, ch)
	} else {
		m.drawBar(canvas, cw, ch)
	}
	for _, row := range canvas {
		b.WriteString("   " + string(row) + "\n")
	}

	if m.hasE {
		b.WriteString("\n" + m.energyLine(y))
	}

	b.WriteString("\n   ")
	for i, v := range y {
		if i >= 6 {
			b.WriteString(dim.Render("…"))
			break
		}
		b.WriteString(dim.Render(fmt.Sprintf("y%d=", i)) + white.Render(fmt.Sprintf("%.3f ", v)))
	}
	b.WriteString("\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(cw-10),
		)
		for _, line := range strings.Split(graph, "\n") {
			b.WriteString("   " + dim.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("   space pause  ± speed  0 reset speed  r restart  q quit") + "\n")
	return b.String()
}

// drawPhase scatters the recent (y0, y1) trail, older points dimmer.
func (m model) drawPhase(canvas [][]rune, w, h int) {
	if len(m.trail) == 0 {
		return
	}

	minX, maxX := m.trail[0].x, m.trail[0].x
	minY, maxY := m.trail[0].y, m.trail[0].y
	for _, p := range m.trail {
		minX = math.Min(minX, p.x)
		maxX = math.Max(maxX, p.x)
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	for i, p := range m.trail {
		col := int((p.x - minX) / rangeX * float64(w-1))
		row := h - 1 - int((p.y-minY)/rangeY*float64(h-1))
		if row < 0 || row >= h || col < 0 || col >= w {
			continue
		}
		canvas[row][col] = trailChar(i, len(m.trail))
	}
}

func trailChar(i, n int) rune {
	switch {
	case i == n-1:
		return '⬤'
	case i > n*3/4:
		return '●'
	case i > n/2:
		return '○'
	default:
		return '·'
	}
}

// drawBar renders a single-component state as a horizontal gauge.
func (m model) drawBar(canvas [][]rune, w, h int) {
	y := m.solver.State()
	if len(y) == 0 {
		return
	}

	maxVal := 1.0
	for _, v := range m.history {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}

	cy := h / 2
	mid := w / 2
	for x := 1; x < w-1; x++ {
		canvas[cy][x] = '─'
	}
	canvas[cy][mid] = '┼'

	span := int(y[0] / maxVal * float64(w/2-2))
	step := 1
	if span < 0 {
		step = -1
	}
	for x := step; x != span+step; x += step {
		canvas[cy][mid+x] = '█'
	}
}

// energyLine is a log-scale drift gauge: each filled cell is one decade
// of relative drift above 1e-16.
func (m model) energyLine(y ode.State) string {
	h := m.sys.(ode.Hamiltonian)
	e := h.Energy(y)

	drift := 0.0
	if m.e0 != 0 {
		drift = math.Abs(e-m.e0) / math.Abs(m.e0)
	}

	cells := 0
	if drift > 0 {
		cells = int(17 + math.Log10(drift))
		if cells < 0 {
			cells = 0
		}
		if cells > 16 {
			cells = 16
		}
	}
	style := green
	if cells > 8 {
		style = yellow
	}
	if cells > 12 {
		style = magenta
	}
	gauge := style.Render(strings.Repeat("█", cells)) + dimmer.Render(strings.Repeat("░", 16-cells))

	return fmt.Sprintf("   %s %s   %s %s %s\n",
		dim.Render("energy"), white.Render(fmt.Sprintf("%.6g", e)),
		dim.Render("drift"), gauge, dim.Render(fmt.Sprintf("%.1e", drift)))
}

// Live runs the interactive view until the user quits. name labels the
// header; the session starts at t = 0.
func Live(name string, sys ode.System, integ ode.Integrator, y0 ode.State, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("tui: dt must be positive, got %f", dt)
	}
	s := solve.New(sys, integ)
	if err := s.SetInitialValue(0, y0); err != nil {
		return err
	}

	p := tea.NewProgram(newModel(name, sys, integ, s, y0, dt), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
