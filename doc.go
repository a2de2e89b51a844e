// Package careflow is the event-driven workflow orchestration engine for the
// BrainSAIT care coordination platform. It matches inbound domain events
// against registered trigger rules, instantiates multi-step workflow
// executions, advances them through a state machine with conditional
// branching, waiting, and escalation, and monitors execution health and
// outcomes.
package careflow

const (
	// Name is the service name reported in logs and health responses
	Name = "careflow"

	// Version is the engine release version
	Version = "0.3.0"
)
