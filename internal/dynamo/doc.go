// Package dynamo provides the numerical primitives behind the coupled codes:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: one explicit step of a numerical scheme
//   - [Port]: a named scalar input or output of a system
//
// Systems and integrators are not thread-safe; each coupled problem owns its
// own instances.
package dynamo
