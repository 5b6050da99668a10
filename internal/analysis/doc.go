// Package analysis provides post-run and method analysis tools.
//
// The package characterizes trajectories and the methods that produced
// them:
//
//   - [PhasePortrait]: planar projection of a recorded trajectory
//   - [Section]: Poincaré section through a threshold plane
//   - [Lyapunov]: largest Lyapunov exponent via shadow-trajectory renormalization
//   - [BifurcationScan]: parameter sweep recording post-transient attractor branches
//   - [PowerSpectrum]: magnitude spectrum of an evenly sampled signal
//   - [ConvergenceOrder]: observed order of a method from a log-log error fit
//   - [LinearStability]: eigenvalues of the dynamics Jacobian at a point
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.Lyapunov(ctx, sys, integ, y0, 0.01, 50)
//	if err == nil && lambda > 0 {
//	    // sensitive dependence on initial conditions
//	}
package analysis
