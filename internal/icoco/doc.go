// Package icoco defines the ICoCo (Interface for Code Coupling) problem
// contract and the lifecycle guard that enforces it.
//
// A coupled code implements [Problem]. Mandatory operations are listed in
// [Mandatory]; everything else is optional and is provided with a
// NotImplemented default by embedding [Base]:
//
//	type Solver struct {
//		icoco.Base
//		// ...
//	}
//
//	func (s *Solver) Initialize() (bool, error) { ... }
//	// ... remaining mandatory operations
//
// A supervisor never calls an implementation directly. It wraps it with
// [Wrap] and drives the returned [Guard], which tracks the time-step context
// and rejects out-of-order calls before they reach the code:
//
//	UNINITIALIZED --Initialize--> READY --InitTimeStep(dt)--> STEP_DEFINED
//	STEP_DEFINED --ValidateTimeStep--> READY   (time += dt)
//	STEP_DEFINED --AbortTimeStep-->    READY   (time unchanged)
//	READY --Terminate--> UNINITIALIZED
//
// # Errors
//
// Violations surface as [*WrongContext], [*WrongArgument] or
// [*NotImplemented]. Boolean results (Initialize, InitTimeStep,
// SolveTimeStep returning false) are normal outcomes, not errors.
//
// # Thread Safety
//
// A Guard is driven by a single caller. It performs no locking.
package icoco
