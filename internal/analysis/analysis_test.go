package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/systems"
)

func circleResult(n int) *ode.Result {
	res := &ode.Result{
		Times:  make([]float64, n),
		States: make([]ode.State, n),
	}
	for i := 0; i < n; i++ {
		t := float64(i) * 4 * math.Pi / float64(n-1)
		res.Times[i] = t
		res.States[i] = ode.State{math.Sin(t), math.Cos(t)}
	}
	return res
}

func TestPhasePortraitPoints(t *testing.T) {
	res := circleResult(100)

	xs, ys := PhasePortrait{XIndex: 0, YIndex: 1}.Points(res)
	if len(xs) != 100 || len(ys) != 100 {
		t.Fatalf("expected 100 points, got %d/%d", len(xs), len(ys))
	}
	if xs[0] != 0 || ys[0] != 1 {
		t.Errorf("first point: got (%f, %f), want (0, 1)", xs[0], ys[0])
	}

	if xs, _ := (PhasePortrait{XIndex: 5, YIndex: 1}).Points(res); xs != nil {
		t.Error("expected nil points for out-of-range component")
	}
}

func TestASCII(t *testing.T) {
	xs, ys := PhasePortrait{XIndex: 0, YIndex: 1}.Points(circleResult(400))

	plot := ASCII(xs, ys, 40, 20)
	lines := strings.Split(strings.TrimRight(plot, "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 40 {
			t.Errorf("row %d: expected 40 columns, got %d", i, n)
		}
	}

	// A circle around the origin crosses both axes.
	for _, want := range []string{"•", "│", "─"} {
		if !strings.Contains(plot, want) {
			t.Errorf("plot missing %q", want)
		}
	}
}

func TestASCIIEmpty(t *testing.T) {
	if got := ASCII(nil, nil, 40, 20); got != "" {
		t.Errorf("expected empty plot, got %d bytes", len(got))
	}
}

func TestSection(t *testing.T) {
	res := circleResult(500)

	// Rising crossings of sin(t) through zero happen where cos(t) = 1.
	sec := Section{CrossIndex: 0, Threshold: 0, XIndex: 0, YIndex: 1}
	xs, ys := sec.Points(res)
	if len(xs) == 0 {
		t.Fatal("expected at least one crossing")
	}
	for i := range xs {
		if math.Abs(xs[i]) > 1e-9 {
			t.Errorf("crossing %d: x = %g, want 0", i, xs[i])
		}
		if math.Abs(ys[i]-1) > 0.02 {
			t.Errorf("crossing %d: y = %f, want 1", i, ys[i])
		}
	}
}

func TestLyapunovHarmonic(t *testing.T) {
	lambda, err := Lyapunov(context.Background(), systems.NewHarmonic(), integrators.NewRK4(), ode.State{1, 0}, 0.01, 20)
	if err != nil {
		t.Fatalf("lyapunov failed: %v", err)
	}
	if math.Abs(lambda) > 0.05 {
		t.Errorf("harmonic oscillator should have zero exponent, got %f", lambda)
	}
}

func TestLyapunovLorenz(t *testing.T) {
	lambda, err := Lyapunov(context.Background(), systems.NewLorenz(), integrators.NewRK4(), ode.State{1, 1, 1}, 0.01, 40)
	if err != nil {
		t.Fatalf("lyapunov failed: %v", err)
	}
	t.Logf("lorenz largest exponent: %f", lambda)
	if lambda < 0.2 || lambda > 1.6 {
		t.Errorf("lorenz exponent out of range: %f", lambda)
	}
}

func TestLyapunovCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lyapunov(ctx, systems.NewLorenz(), integrators.NewRK4(), ode.State{1, 1, 1}, 0.01, 40)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConvergenceOrder(t *testing.T) {
	cases := []struct {
		method string
		integ  ode.Integrator
		want   float64
	}{
		{"euler", integrators.NewEuler(), 1},
		{"midpoint", integrators.NewMidpoint(), 2},
		{"rk4", integrators.NewRK4(), 4},
	}

	dts := []float64{0.2, 0.1, 0.05, 0.025}
	for _, tc := range cases {
		ord, err := ConvergenceOrder(context.Background(), systems.NewHarmonic(), tc.integ, ode.State{1, 0}, 0, 1, dts)
		if err != nil {
			t.Fatalf("%s: %v", tc.method, err)
		}
		t.Logf("%s: slope %.3f, r2 %.5f", tc.method, ord.Slope, ord.R2)
		if math.Abs(ord.Slope-tc.want) > 0.4 {
			t.Errorf("%s: observed order %.3f, want %.0f", tc.method, ord.Slope, tc.want)
		}
		if ord.R2 < 0.98 {
			t.Errorf("%s: poor fit, r2 = %f", tc.method, ord.R2)
		}
	}
}

func TestConvergenceOrderErrors(t *testing.T) {
	ctx := context.Background()
	sys := systems.NewHarmonic()
	integ := integrators.NewRK4()

	if _, err := ConvergenceOrder(ctx, sys, integ, ode.State{1, 0}, 0, 1, []float64{0.1}); err == nil {
		t.Error("expected error for a single step size")
	}
	if _, err := ConvergenceOrder(ctx, sys, integ, ode.State{1, 0}, 1, 1, []float64{0.1, 0.05}); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := ConvergenceOrder(ctx, sys, integ, ode.State{1, 0}, 0, 1, []float64{0.1, -0.05}); err == nil {
		t.Error("expected error for negative step size")
	}
}

func TestLinearStability(t *testing.T) {
	damped := systems.NewHarmonic()
	damped.Damping = 0.5

	sp, err := LinearStability(damped, 0, ode.State{0, 0})
	if err != nil {
		t.Fatalf("stability failed: %v", err)
	}
	if len(sp.Eigenvalues) != 2 {
		t.Fatalf("expected 2 eigenvalues, got %d", len(sp.Eigenvalues))
	}
	if sp.Abscissa >= 0 {
		t.Errorf("damped oscillator should be stable, abscissa = %f", sp.Abscissa)
	}
	if got := sp.Classify(); got != "stable" {
		t.Errorf("expected stable, got %s", got)
	}

	marginal, err := LinearStability(systems.NewHarmonic(), 0, ode.State{0, 0})
	if err != nil {
		t.Fatalf("stability failed: %v", err)
	}
	if got := marginal.Classify(); got != "marginal" {
		t.Errorf("expected marginal, got %s (abscissa %g)", got, marginal.Abscissa)
	}

	// Van der Pol's origin is an unstable focus.
	unstable, err := LinearStability(systems.NewVanDerPol(), 0, ode.State{0, 0})
	if err != nil {
		t.Fatalf("stability failed: %v", err)
	}
	if got := unstable.Classify(); got != "unstable" {
		t.Errorf("expected unstable, got %s (abscissa %g)", got, unstable.Abscissa)
	}
}

func TestLinearStabilityDimension(t *testing.T) {
	_, err := LinearStability(systems.NewHarmonic(), 0, ode.State{1, 0, 0})
	if !errors.Is(err, ode.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPowerSpectrum(t *testing.T) {
	const dt = 0.01
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 2.0 * float64(i) * dt)
	}

	freqs, power := PowerSpectrum(samples, dt)
	if len(freqs) != 501 || len(power) != 501 {
		t.Fatalf("expected 501 coefficients, got %d/%d", len(freqs), len(power))
	}

	got := DominantFrequency(samples, dt)
	if math.Abs(got-2.0) > 0.11 {
		t.Errorf("dominant frequency: got %f, want 2.0", got)
	}
}

func TestBifurcationScan(t *testing.T) {
	sys := systems.NewVanDerPol()
	scan := BifurcationScan{
		Param:     "mu",
		From:      0.5,
		To:        2.0,
		Steps:     4,
		Component: 0,
		Transient: 40,
		Record:    30,
	}

	points, err := scan.Run(context.Background(), sys, integrators.NewRK4(), ode.State{0.1, 0}, 0.01)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if points[0].Param != 0.5 || points[3].Param != 2.0 {
		t.Errorf("parameter range: got [%f, %f]", points[0].Param, points[3].Param)
	}

	// The limit cycle peaks near x = 2 over this whole range.
	for _, p := range points {
		if len(p.Values) == 0 {
			t.Fatalf("no branch values at mu=%f", p.Param)
		}
		peak := p.Values[0]
		for _, v := range p.Values {
			if v > peak {
				peak = v
			}
		}
		if peak < 1.5 || peak > 2.5 {
			t.Errorf("mu=%f: peak %f outside limit cycle range", p.Param, peak)
		}
	}

	if got := sys.GetParams()["mu"]; got != 1.0 {
		t.Errorf("swept parameter not restored: mu = %f", got)
	}
}

func TestBifurcationScanErrors(t *testing.T) {
	ctx := context.Background()
	integ := integrators.NewRK4()

	scan := BifurcationScan{Param: "mu", From: 0.5, To: 2, Steps: 4, Transient: 1, Record: 1}
	if _, err := scan.Run(ctx, systems.NewExponential(), integ, ode.State{1}, 0.01); err == nil {
		t.Error("expected error for unknown param")
	}

	scan.Steps = 1
	if _, err := scan.Run(ctx, systems.NewVanDerPol(), integ, ode.State{0.1, 0}, 0.01); err == nil {
		t.Error("expected error for a single parameter step")
	}
}
