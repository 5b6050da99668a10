package store

import (
	"fmt"
	"os"
	"strings"
)

const svgStroke = "#00d7ff"

// TrajectorySVG renders a planar projection of a trajectory as an SVG
// polyline on a dark background. Bounds are padded by 10% so the curve
// never touches the edge. Returns "" when there are fewer than two
// points to connect.
func TrajectorySVG(xs, ys []float64, width, height int) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}

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

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgStroke))

	for i := range xs {
		px := (xs[i] - minX) / rangeX * float64(width)
		py := float64(height) - (ys[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ExportSVG writes a stored run's phase projection, plotting state
// component yi against component xi.
func (s *Store) ExportSVG(runID string, xi, yi int, path string) error {
	_, states, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run %s has no samples", runID)
	}
	if dim := len(states[0]); xi >= dim || yi >= dim || xi < 0 || yi < 0 {
		return fmt.Errorf("state has %d components, cannot plot (%d, %d)", dim, xi, yi)
	}

	xs := make([]float64, len(states))
	ys := make([]float64, len(states))
	for i, st := range states {
		xs[i] = st[xi]
		ys[i] = st[yi]
	}

	return os.WriteFile(path, []byte(TrajectorySVG(xs, ys, 800, 600)), 0644)
}
