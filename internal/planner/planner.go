// Package planner glues the persistent store to the in-memory hierarchy
// engine. It rebuilds a fresh engine from stored records for every call,
// which keeps the engine single-writer and free of persistence concerns.
package planner

import (
	"fmt"

	"github.com/celebrationpro/celebro/internal/hierarchy"
	"github.com/celebrationpro/celebro/internal/models"
	"github.com/celebrationpro/celebro/internal/store"
)

// Planner answers planning queries for an event's task graph.
type Planner struct {
	store *store.Store
}

// New creates a new planner backed by the given store.
func New(s *store.Store) *Planner {
	return &Planner{store: s}
}

// Event loads an event, failing with ErrEventNotFound when absent.
func (p *Planner) Event(eventID string) (*models.Event, error) {
	event, err := p.store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}
	return event, nil
}

// Build loads an event's tasks and dependency edges into a hierarchy engine.
func (p *Planner) Build(eventID string) (*hierarchy.Hierarchy, error) {
	tasks, err := p.store.ListTasksForEvent(eventID, "")
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	edges, err := p.store.ListDependencies(eventID)
	if err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	return hierarchy.FromTasks(tasks, edges), nil
}

// Ready returns the event's pending tasks whose dependencies have all
// completed, in creation order.
func (p *Planner) Ready(eventID string) ([]models.Task, error) {
	h, err := p.Build(eventID)
	if err != nil {
		return nil, err
	}

	var ready []models.Task
	for _, task := range h.EventTasks(eventID) {
		if task.Status == models.TaskStatusPending && h.CanStart(task.ID) {
			ready = append(ready, *task)
		}
	}
	return ready, nil
}

// TaskProgress pairs a top-level task with its rolled-up completion.
type TaskProgress struct {
	TaskID   string
	Name     string
	Module   string
	Progress float64
}

// Progress returns per-root progress for an event plus the event rollup:
// the unweighted mean across top-level tasks. An event without tasks rolls
// up to 0.
func (p *Planner) Progress(eventID string) ([]TaskProgress, float64, error) {
	h, err := p.Build(eventID)
	if err != nil {
		return nil, 0, err
	}

	var roots []TaskProgress
	var sum float64
	for _, task := range h.EventTasks(eventID) {
		if task.ParentID != "" {
			continue
		}
		pr := h.Progress(task.ID)
		roots = append(roots, TaskProgress{
			TaskID:   task.ID,
			Name:     task.Name,
			Module:   task.Module,
			Progress: pr,
		})
		sum += pr
	}
	if len(roots) == 0 {
		return nil, 0, nil
	}
	return roots, sum / float64(len(roots)), nil
}

// CriticalPath returns the event's critical path as computed by the engine.
func (p *Planner) CriticalPath(eventID string) ([]string, error) {
	h, err := p.Build(eventID)
	if err != nil {
		return nil, err
	}
	return h.CriticalPath(eventID), nil
}

// CheckCycle reports a dependency cycle among the event's tasks, or nil.
func (p *Planner) CheckCycle(eventID string) ([]string, error) {
	h, err := p.Build(eventID)
	if err != nil {
		return nil, err
	}
	return h.DetectCycle(), nil
}

// CompleteTask marks a task completed in the store and notifies for every
// dependent task that just became start-eligible. It returns the created
// notifications.
func (p *Planner) CompleteTask(taskID string) ([]models.Notification, error) {
	task, err := p.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("complete task %s: %w", taskID, ErrTaskNotFound)
	}

	if err := p.store.UpdateTaskStatus(taskID, models.TaskStatusCompleted); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	eventID := task.EventID()
	h, err := p.Build(eventID)
	if err != nil {
		return nil, err
	}

	var created []models.Notification
	for _, depID := range h.Dependents(taskID) {
		dep, ok := h.Task(depID)
		if !ok || dep.Status != models.TaskStatusPending || !h.CanStart(depID) {
			continue
		}
		n, err := p.store.CreateNotification(eventID, depID, "task_ready",
			fmt.Sprintf("Task %q is ready to start: all dependencies completed", dep.Name))
		if err != nil {
			return created, fmt.Errorf("create notification: %w", err)
		}
		created = append(created, *n)
	}
	return created, nil
}
