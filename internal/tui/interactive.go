package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
	"github.com/odelab/odelab/internal/systems"
)

type wizStep int

const (
	wizMenu wizStep = iota
	wizSetup
	wizRun
)

var systemBlurbs = map[string]string{
	"doublewell":  "bistable potential",
	"duffing":     "forced bistable oscillator",
	"exponential": "growth and decay",
	"harmonic":    "spring-mass oscillator",
	"lorenz":      "butterfly attractor",
	"pendulum":    "planar pendulum",
	"rossler":     "band attractor",
	"vanderpol":   "relaxation oscillator",
}

var stateLabels = map[string][]string{
	"doublewell":  {"x", "v"},
	"duffing":     {"x", "v"},
	"exponential": {"y"},
	"harmonic":    {"x", "v"},
	"lorenz":      {"x", "y", "z"},
	"pendulum":    {"theta", "omega"},
	"rossler":     {"x", "y", "z"},
	"vanderpol":   {"x", "v"},
}

type row struct {
	label string
	value float64
}

// wizard walks the user from a system menu through initial conditions
// into a live session. The running session reuses the live model.
type wizard struct {
	step   wizStep
	names  []string
	cursor int

	system    string
	methods   []string
	methodIdx int
	rows      []row
	rowCursor int
	editing   bool
	editBuf   string
	errMsg    string

	inner model

	width  int
	height int
}

func newWizard() wizard {
	w := wizard{
		names:   systems.Names(),
		methods: integrators.Names(),
		width:   80,
		height:  24,
	}
	for i, name := range w.methods {
		if name == "rk4" {
			w.methodIdx = i
		}
	}
	return w
}

func (w wizard) Init() tea.Cmd { return nil }

func (w wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		if w.step == wizRun {
			im, cmd := w.inner.Update(msg)
			w.inner = im.(model)
			return w, cmd
		}
		return w, nil

	case tea.KeyMsg:
		switch w.step {
		case wizMenu:
			return w.updateMenu(msg)
		case wizSetup:
			return w.updateSetup(msg)
		case wizRun:
			switch msg.String() {
			case "escape", "c":
				w.step = wizSetup
				return w, nil
			}
			im, cmd := w.inner.Update(msg)
			w.inner = im.(model)
			return w, cmd
		}

	case tickMsg:
		if w.step == wizRun {
			im, cmd := w.inner.Update(msg)
			w.inner = im.(model)
			return w, cmd
		}
		// Leaving the run view orphans its tick; drop it here.
		return w, nil
	}
	return w, nil
}

func (w wizard) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape", "ctrl+c":
		return w, tea.Quit
	case "up", "k":
		if w.cursor > 0 {
			w.cursor--
		}
	case "down", "j":
		if w.cursor < len(w.names)-1 {
			w.cursor++
		}
	case "enter", " ":
		w.enterSetup(w.names[w.cursor])
	}
	return w, nil
}

func (w *wizard) enterSetup(name string) {
	sys, err := systems.ByName(name)
	if err != nil {
		w.errMsg = err.Error()
		return
	}

	labels := stateLabels[name]
	y0 := systems.DefaultState(sys)

	w.system = name
	w.rows = w.rows[:0]
	for i, v := range y0 {
		label := fmt.Sprintf("y%d", i)
		if i < len(labels) {
			label = labels[i]
		}
		w.rows = append(w.rows, row{label: label, value: v})
	}
	w.rows = append(w.rows, row{label: "dt", value: 0.01})
	w.rowCursor = 0
	w.editing = false
	w.errMsg = ""
	w.step = wizSetup
}

func (w wizard) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if w.editing {
		return w.updateEdit(msg)
	}

	// Row 0 selects the method; the remaining rows are numbers.
	switch msg.String() {
	case "q", "ctrl+c":
		return w, tea.Quit
	case "escape":
		w.step = wizMenu
		w.errMsg = ""
	case "up", "k":
		if w.rowCursor > 0 {
			w.rowCursor--
		}
	case "down", "j":
		if w.rowCursor < len(w.rows) {
			w.rowCursor++
		}
	case "left", "h":
		if w.rowCursor == 0 {
			w.methodIdx = (w.methodIdx + len(w.methods) - 1) % len(w.methods)
		} else {
			w.rows[w.rowCursor-1].value -= 0.1
		}
	case "right", "l":
		if w.rowCursor == 0 {
			w.methodIdx = (w.methodIdx + 1) % len(w.methods)
		} else {
			w.rows[w.rowCursor-1].value += 0.1
		}
	case "enter":
		if w.rowCursor > 0 {
			w.editing = true
			w.editBuf = ""
		}
	case "s":
		return w.start()
	}
	return w, nil
}

func (w wizard) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v, err := strconv.ParseFloat(w.editBuf, 64); err == nil {
			w.rows[w.rowCursor-1].value = v
		}
		w.editing = false
	case "escape":
		w.editing = false
	case "backspace":
		if len(w.editBuf) > 0 {
			w.editBuf = w.editBuf[:len(w.editBuf)-1]
		}
	default:
		s := msg.String()
		if len(s) == 1 && (s[0] >= '0' && s[0] <= '9' || s[0] == '.' || s[0] == '-') {
			w.editBuf += s
		}
	}
	return w, nil
}

func (w wizard) start() (tea.Model, tea.Cmd) {
	sys, err := systems.ByName(w.system)
	if err != nil {
		w.errMsg = err.Error()
		return w, nil
	}
	integ, err := integrators.ByName(w.methods[w.methodIdx])
	if err != nil {
		w.errMsg = err.Error()
		return w, nil
	}

	y0 := make(ode.State, sys.Dim())
	for i := range y0 {
		y0[i] = w.rows[i].value
	}
	dt := w.rows[len(w.rows)-1].value
	if dt <= 0 {
		w.errMsg = "dt must be positive"
		return w, nil
	}

	s := solve.New(sys, integ)
	if err := s.SetInitialValue(0, y0); err != nil {
		w.errMsg = err.Error()
		return w, nil
	}

	w.inner = newModel(w.system, sys, integ, s, y0, dt)
	w.inner.width = w.width
	w.inner.height = w.height
	w.errMsg = ""
	w.step = wizRun
	return w, w.inner.Init()
}

func (w wizard) View() string {
	switch w.step {
	case wizSetup:
		return w.viewSetup()
	case wizRun:
		return w.inner.View() + dim.Render("   esc back to setup") + "\n"
	default:
		return w.viewMenu()
	}
}

func (w wizard) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(dim.Render("   ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString(cyan.Render("         o d e l a b") + "\n")
	b.WriteString(dim.Render("   ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	for i, name := range w.names {
		cursor := "  "
		line := white.Render(fmt.Sprintf("%-12s", name))
		if i == w.cursor {
			cursor = cyan.Render("> ")
			line = cyan.Render(fmt.Sprintf("%-12s", name))
		}
		b.WriteString(fmt.Sprintf("   %s%s %s\n", cursor, line, dim.Render(systemBlurbs[name])))
	}

	if w.errMsg != "" {
		b.WriteString("\n   " + magenta.Render(w.errMsg) + "\n")
	}
	b.WriteString("\n" + dim.Render("   ↑/↓ select  enter configure  q quit") + "\n")
	return b.String()
}

func (w wizard) viewSetup() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("   " + cyan.Render(w.system) + " " + dim.Render(systemBlurbs[w.system]) + "\n\n")

	cursor := "  "
	if w.rowCursor == 0 {
		cursor = cyan.Render("> ")
	}
	b.WriteString(fmt.Sprintf("   %s%s  %s\n", cursor,
		white.Render(fmt.Sprintf("%-8s", "method")),
		magenta.Render(fmt.Sprintf("< %s >", w.methods[w.methodIdx]))))

	for i, r := range w.rows {
		cursor := "  "
		if w.rowCursor == i+1 {
			cursor = cyan.Render("> ")
		}
		value := white.Render(fmt.Sprintf("%10.4f", r.value))
		if w.editing && w.rowCursor == i+1 {
			value = yellow.Render(fmt.Sprintf("%10s▋", w.editBuf))
		}
		b.WriteString(fmt.Sprintf("   %s%s  %s\n", cursor,
			white.Render(fmt.Sprintf("%-8s", r.label)), value))
	}

	if w.errMsg != "" {
		b.WriteString("\n   " + magenta.Render(w.errMsg) + "\n")
	}

	b.WriteString("\n" + dim.Render("   ↑/↓ row  ←/→ adjust  enter edit  s start  esc back") + "\n")
	return b.String()
}

// Interactive runs the full menu-driven session picker.
func Interactive() error {
	p := tea.NewProgram(newWizard(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
