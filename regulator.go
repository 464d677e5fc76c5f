package qamp

/*
Regulator defines an interface for types that regulate the flow and behavior
of the engine. Each regulator is a control-system component: it watches the
pool's metrics and decides whether scheduling and execution may proceed at
the current rate.

The pool drives every registered regulator from its metrics loop, calling
Observe with a fresh snapshot and Renormalize once per tick.

Implementations in this package:
  - FaultLatch: stops new runs after an invariant fault inside the simulator
  - MemoryGovernor: keeps live amplitude allocations inside a fixed byte budget
  - Scaler: sizes the worker pool to the queue load
*/
type Regulator interface {
	// Observe lets the regulator read the current system metrics. This is
	// the sensing half of the control loop; no control decision is made
	// here.
	//
	// Parameters:
	//   - metrics: Current system metrics including performance and health indicators
	Observe(metrics *Metrics)

	// Limit determines if the regulated action should be restricted.
	// Returns true if the action should be limited, false if it should
	// proceed.
	//
	// Returns:
	//   - bool: true if the action should be limited, false if it should proceed
	Limit() bool

	// Renormalize attempts to return the system to a normal operating
	// state. What "normal" means is up to the implementation: the scaler
	// re-evaluates pool size, the governor refreshes utilization, and the
	// fault latch stays put until an explicit Reset.
	Renormalize()
}
