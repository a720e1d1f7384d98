package core

import "github.com/google/uuid"

// GenerateExecID produces a unique identifier for one flow execution.
func GenerateExecID() string {
	return uuid.New().String()
}

// GenerateEventID produces a unique identifier for a progress event.
func GenerateEventID() string {
	return uuid.New().String()
}
