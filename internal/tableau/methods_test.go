package tableau

import (
	"math"
	"testing"
)

func TestCatalog(t *testing.T) {
	tests := []struct {
		name   string
		ctor   func() *Tableau
		stages int
		order  int
	}{
		{"euler", Euler, 1, 1},
		{"midpoint", Midpoint, 2, 2},
		{"heun", Heun, 2, 2},
		{"ralston", Ralston, 2, 2},
		{"kutta3", Kutta3, 3, 3},
		{"rk4", RK4, 4, 4},
		{"rk38", RK38, 4, 4},
		{"dopri5", DoPri5, 7, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := tt.ctor()

			if tab.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tab.Name(), tt.name)
			}
			if tab.Stages() != tt.stages {
				t.Errorf("Stages() = %d, want %d", tab.Stages(), tt.stages)
			}
			if tab.Order() != tt.order {
				t.Errorf("Order() = %d, want %d", tab.Order(), tt.order)
			}

			// Consistency conditions every catalog method satisfies:
			// weights sum to one, and each node equals its row sum.
			sum := 0.0
			for i := 0; i < tab.Stages(); i++ {
				sum += tab.Weight(i)
			}
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("weights sum to %.15f, want 1", sum)
			}

			for i := 0; i < tab.Stages(); i++ {
				rowSum := 0.0
				for j := 0; j < tab.Stages(); j++ {
					rowSum += tab.Coeff(i, j)
				}
				if math.Abs(rowSum-tab.Node(i)) > 1e-12 {
					t.Errorf("row %d sums to %.15f, want node %.15f", i, rowSum, tab.Node(i))
				}
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		tab, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q) failed: %v", name, err)
			continue
		}
		if tab.Name() != name {
			t.Errorf("ByName(%q) returned tableau named %q", name, tab.Name())
		}
	}

	if _, err := ByName("rk99"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestNamesMatchCatalog(t *testing.T) {
	names := Names()
	if len(names) != len(catalog) {
		t.Fatalf("Names() lists %d methods, catalog has %d", len(names), len(catalog))
	}
	for _, n := range names {
		if _, ok := catalog[n]; !ok {
			t.Errorf("Names() lists %q which is not in the catalog", n)
		}
	}
}
