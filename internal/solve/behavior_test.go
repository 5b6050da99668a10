package solve_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/odelab/odelab/internal/integrators"
	"github.com/odelab/odelab/internal/ode"
	"github.com/odelab/odelab/internal/solve"
	"github.com/odelab/odelab/internal/systems"
)

var _ = Describe("Solver", func() {
	var s *solve.Solver

	BeforeEach(func() {
		s = solve.New(systems.NewHarmonic(), integrators.NewRK4())
	})

	Describe("seeding", func() {
		It("rejects a state with the wrong dimension", func() {
			Expect(s.SetInitialValue(0, ode.State{1})).To(MatchError(ode.ErrDimensionMismatch))
		})

		It("refuses to solve before an initial value is set", func() {
			_, err := s.Solve(context.Background(), 1, ode.DefaultConfig())
			Expect(err).To(MatchError(ode.ErrNoInitialValue))
		})
	})

	Describe("integrating the harmonic oscillator", func() {
		BeforeEach(func() {
			Expect(s.SetInitialValue(0, ode.State{1, 0})).To(Succeed())
		})

		It("lands exactly on the requested end time", func() {
			res, err := s.Solve(context.Background(), 1, ode.Config{Dt: 0.3})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Times[len(res.Times)-1]).To(Equal(1.0))
		})

		It("returns to the start after one full period", func() {
			res, err := s.Solve(context.Background(), 2*math.Pi, ode.Config{Dt: 0.001})
			Expect(err).NotTo(HaveOccurred())

			final := res.States[len(res.States)-1]
			Expect(final[0]).To(BeNumerically("~", 1.0, 1e-8))
			Expect(final[1]).To(BeNumerically("~", 0.0, 1e-8))
		})

		It("keeps the energy drift small", func() {
			res, err := s.Solve(context.Background(), 10, ode.Config{Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.EnergyDrift).To(BeNumerically("<", 1e-8))
		})

		It("integrates backward when the end time precedes the start", func() {
			res, err := s.Solve(context.Background(), -1, ode.Config{Dt: 0.01})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Times[len(res.Times)-1]).To(Equal(-1.0))
			final := res.States[len(res.States)-1]
			Expect(final[0]).To(BeNumerically("~", math.Cos(-1), 1e-8))
		})
	})

	Describe("runaway trajectories", func() {
		It("wraps the failing step in a SolveError", func() {
			runaway := solve.New(systems.NewLorenz(), integrators.NewEuler())
			Expect(runaway.SetInitialValue(0, ode.State{1, 1, 1})).To(Succeed())

			// dt=1 makes Euler overflow on the attractor within a few steps.
			_, err := runaway.Solve(context.Background(), 100, ode.Config{Dt: 1.0, ValidateState: true})
			Expect(err).To(MatchError(ode.ErrInvalidState))

			var solveErr *ode.SolveError
			Expect(errors.As(err, &solveErr)).To(BeTrue())
			Expect(solveErr.Step).To(BeNumerically(">=", 0))
			Expect(solveErr.State.IsValid()).To(BeFalse())
		})
	})
})
