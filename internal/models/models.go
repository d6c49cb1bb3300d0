// Package models defines the core domain types for Celebro.
package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// TaskPriority represents how urgent a task is.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// MetaEventID is the metadata key that tags a task with its owning event.
const MetaEventID = "event_id"

// Task represents a unit of planning work within an event.
type Task struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Module         string            `json:"module"`
	ParentID       string            `json:"parent_id,omitempty"`
	Assignee       string            `json:"assignee,omitempty"`
	DueDate        time.Time         `json:"due_date,omitempty"`
	Status         TaskStatus        `json:"status"`
	Priority       TaskPriority      `json:"priority"`
	EstimatedHours float64           `json:"estimated_hours"`
	ActualHours    float64           `json:"actual_hours"`
	Dependencies   []string          `json:"dependencies"`
	Subtasks       []string          `json:"subtasks"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// EventID returns the owning event tag from the task metadata, or ""
// when the task is untagged.
func (t *Task) EventID() string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata[MetaEventID]
}

// EventStatus represents the lifecycle state of an event.
type EventStatus string

const (
	EventStatusPlanning  EventStatus = "planning"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event represents a client celebration being planned.
type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	EventType  string      `json:"event_type"`
	ClientName string      `json:"client_name"`
	Venue      string      `json:"venue,omitempty"`
	EventDate  time.Time   `json:"event_date,omitempty"`
	Status     EventStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Feedback represents a client rating for a completed event.
type Feedback struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	ClientName string    `json:"client_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notification represents a message surfaced to planners, e.g. when a
// task becomes ready to start.
type Notification struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
