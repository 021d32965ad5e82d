// Package adapter declares the contract the Runtime Engine consumes to talk
// to an actual robot or simulator. Concrete adapters live outside this
// module; the engine only ever depends on this interface.
package adapter

import "context"

// RobotAdapter is implemented by whatever backs a mission run: a hardware
// driver, a simulator, or a test double.
type RobotAdapter interface {
	// Connect establishes the adapter's session, given backend-specific options.
	Connect(ctx context.Context, opts map[string]any) (bool, error)
	// RunAction executes a named robot action with parameters, blocking until
	// the action completes or ctx is cancelled.
	RunAction(ctx context.Context, name string, params map[string]any) (bool, error)
	// Stop requests an immediate halt of whatever the robot is doing.
	Stop(ctx context.Context) error
	// GetSensorData returns the latest sensor snapshot.
	GetSensorData(ctx context.Context) (map[string]any, error)
	// Health reports adapter/robot health for monitoring.
	Health(ctx context.Context) (map[string]any, error)
}
