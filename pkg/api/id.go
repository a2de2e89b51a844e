package api

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type (
	// EventID is a unique identifier for a domain event
	EventID string

	// TriggerID is a unique identifier for a registered trigger
	TriggerID string

	// WorkflowID is a unique identifier for a workflow definition
	WorkflowID string

	// ExecutionID is a unique identifier for a workflow execution
	ExecutionID string

	// StepID is a unique identifier for a step within a workflow
	StepID string

	// AlertID is a unique identifier for a monitoring alert
	AlertID string

	// SubjectID identifies the person or entity an event concerns
	SubjectID string

	// TemplateID identifies a message content template
	TemplateID string
)

// InvalidIDChars matches characters not permitted in trigger and workflow
// IDs. Valid characters are: letters, digits, underscore, dot, hyphen,
// plus, space
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-+ ]`)

// SanitizeID lowercases an ID, removes invalid characters, replaces spaces
// with hyphens, and trims leading and trailing hyphens
func SanitizeID[T ~string](id T) T {
	lower := strings.ToLower(string(id))
	sanitized := InvalidIDChars.ReplaceAllString(lower, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	return T(strings.Trim(sanitized, "-"))
}

// NewExecutionID generates a random execution identifier
func NewExecutionID() ExecutionID {
	return ExecutionID(uuid.NewString())
}

// NewEventID generates a random event identifier
func NewEventID() EventID {
	return EventID(uuid.NewString())
}

// NewAlertID generates a random alert identifier
func NewAlertID() AlertID {
	return AlertID(uuid.NewString())
}
