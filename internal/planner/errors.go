package planner

import "errors"

// Sentinel errors for planner operations.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrEventNotFound = errors.New("event not found")
)
