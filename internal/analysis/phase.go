package analysis

import (
	"strings"

	"github.com/odelab/odelab/internal/ode"
)

// PhasePortrait projects a recorded trajectory onto two state
// components.
type PhasePortrait struct {
	XIndex, YIndex int
}

// Points extracts the projected coordinates from a result. Out-of-range
// components yield nil slices.
func (p PhasePortrait) Points(res *ode.Result) (xs, ys []float64) {
	if res == nil || len(res.States) == 0 {
		return nil, nil
	}
	dim := len(res.States[0])
	if p.XIndex < 0 || p.XIndex >= dim || p.YIndex < 0 || p.YIndex >= dim {
		return nil, nil
	}

	xs = make([]float64, len(res.States))
	ys = make([]float64, len(res.States))
	for i, st := range res.States {
		xs[i] = st[p.XIndex]
		ys[i] = st[p.YIndex]
	}
	return xs, ys
}

// ASCII renders the points as a scatter on a width by height canvas.
// Bounds are padded by 10% and the axes are drawn where they cross the
// visible area.
func ASCII(xs, ys []float64, width, height int) string {
	if len(xs) == 0 || len(xs) != len(ys) || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i := range xs {
		col := int((xs[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((ys[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Section records where a trajectory crosses a plane in the increasing
// direction. Crossing points are interpolated linearly between the
// samples on either side.
type Section struct {
	CrossIndex int
	Threshold  float64
	XIndex     int
	YIndex     int
}

func (s Section) Points(res *ode.Result) (xs, ys []float64) {
	if res == nil || len(res.States) < 2 {
		return nil, nil
	}
	dim := len(res.States[0])
	if s.CrossIndex < 0 || s.CrossIndex >= dim ||
		s.XIndex < 0 || s.XIndex >= dim ||
		s.YIndex < 0 || s.YIndex >= dim {
		return nil, nil
	}

	for i := 1; i < len(res.States); i++ {
		prev := res.States[i-1][s.CrossIndex]
		curr := res.States[i][s.CrossIndex]
		if prev < s.Threshold && curr >= s.Threshold {
			frac := (s.Threshold - prev) / (curr - prev)
			xs = append(xs, lerp(res.States[i-1][s.XIndex], res.States[i][s.XIndex], frac))
			ys = append(ys, lerp(res.States[i-1][s.YIndex], res.States[i][s.YIndex], frac))
		}
	}
	return xs, ys
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
