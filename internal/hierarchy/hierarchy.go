// Package hierarchy implements the in-memory task hierarchy and dependency
// graph engine for event planning.
//
// A Hierarchy owns a collection of tasks keyed by ID, the parent/subtask
// containment forest, and a reverse-dependency index (task ID to the tasks
// that list it as a dependency). It performs no I/O and no persistence; the
// host loads task records into it, queries eligibility, progress and the
// critical path, and throws it away. It is a single-writer structure: callers
// embedding it in a concurrent host must serialize writes externally.
package hierarchy

import (
	"time"

	"github.com/celebrationpro/celebro/internal/models"
)

// Hierarchy is the task graph engine.
type Hierarchy struct {
	tasks      map[string]*models.Task
	dependents map[string][]string // task ID -> IDs of tasks that depend on it
	order      []string            // task IDs in first-creation order
}

// New creates an empty Hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		tasks:      make(map[string]*models.Task),
		dependents: make(map[string][]string),
	}
}

// CreateTaskInput carries the caller-supplied fields for CreateTask.
type CreateTaskInput struct {
	ID             string
	Name           string
	Module         string
	ParentID       string
	Assignee       string
	DueDate        time.Time
	Priority       models.TaskPriority
	EstimatedHours float64
	Metadata       map[string]string
}

// CreateTask constructs a task with status pending, zero actual hours and
// empty dependency/subtask lists, and stores it keyed by ID.
//
// An existing task with the same ID is overwritten wholesale; linkage
// recorded on the old record is discarded, though reverse-index entries
// keyed by the ID survive. If ParentID names a known task, the new ID is
// appended to that parent's subtask list (insertion order, no dedup); an
// unknown parent is silently ignored.
func (h *Hierarchy) CreateTask(in CreateTaskInput) *models.Task {
	now := time.Now().UTC()
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		ID:             in.ID,
		Name:           in.Name,
		Module:         in.Module,
		ParentID:       in.ParentID,
		Assignee:       in.Assignee,
		DueDate:        in.DueDate,
		Status:         models.TaskStatusPending,
		Priority:       priority,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    0,
		Dependencies:   []string{},
		Subtasks:       []string{},
		Metadata:       in.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, exists := h.tasks[in.ID]; !exists {
		h.order = append(h.order, in.ID)
	}
	h.tasks[in.ID] = task

	if in.ParentID != "" {
		if parent, ok := h.tasks[in.ParentID]; ok {
			parent.Subtasks = append(parent.Subtasks, in.ID)
		}
	}

	return task
}

// AddDependency records that taskID cannot start until dependsOnID completes.
// Both tasks must already exist; otherwise the call is a silent no-op. The
// edge is appended to the task's forward dependency list and to the reverse
// index. Edges are not de-duplicated and no cycle check is performed; see
// AddDependencyChecked for the strict variant.
func (h *Hierarchy) AddDependency(taskID, dependsOnID string) {
	task, ok := h.tasks[taskID]
	if !ok {
		return
	}
	if _, ok := h.tasks[dependsOnID]; !ok {
		return
	}
	task.Dependencies = append(task.Dependencies, dependsOnID)
	h.dependents[dependsOnID] = append(h.dependents[dependsOnID], taskID)
}

// CanStart reports whether every dependency of the task exists and has
// completed. A task with no dependencies can always start. An unknown task
// cannot.
func (h *Hierarchy) CanStart(taskID string) bool {
	task, ok := h.tasks[taskID]
	if !ok {
		return false
	}
	for _, depID := range task.Dependencies {
		dep, ok := h.tasks[depID]
		if !ok || dep.Status != models.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// Progress returns the completion percentage (0-100) of a task. A task
// without subtasks is 100 when completed and 0 otherwise, regardless of
// logged hours. A task with subtasks is the unweighted mean of each direct
// subtask's own progress.
//
// The walk is iterative with an explicit stack, and a subtask already on the
// stack contributes 0 instead of being re-entered, so a malformed containment
// cycle terminates rather than recursing forever. Unknown tasks score 0.
func (h *Hierarchy) Progress(taskID string) float64 {
	if _, ok := h.tasks[taskID]; !ok {
		return 0
	}

	type frame struct {
		id  string
		idx int
		sum float64
		cnt int
	}

	scored := make(map[string]float64)
	onStack := map[string]bool{taskID: true}
	stack := []*frame{{id: taskID}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		subs := h.tasks[f.id].Subtasks

		if len(subs) == 0 {
			p := 0.0
			if h.tasks[f.id].Status == models.TaskStatusCompleted {
				p = 100
			}
			scored[f.id] = p
			delete(onStack, f.id)
			stack = stack[:len(stack)-1]
			continue
		}

		if f.idx < len(subs) {
			childID := subs[f.idx]
			if p, done := scored[childID]; done {
				f.sum += p
				f.cnt++
				f.idx++
				continue
			}
			if _, ok := h.tasks[childID]; !ok || onStack[childID] {
				f.cnt++ // unknown or cyclic subtask counts as 0
				f.idx++
				continue
			}
			onStack[childID] = true
			stack = append(stack, &frame{id: childID})
			continue
		}

		scored[f.id] = f.sum / float64(f.cnt)
		delete(onStack, f.id)
		stack = stack[:len(stack)-1]
	}

	return scored[taskID]
}

// CriticalPath returns the longest chain of task IDs, counted by node, that
// is reachable through the reverse-dependency index starting from any task
// tagged with the given event ID. The path runs forward in execution order:
// from a task toward the tasks that depend on it.
//
// One visited set is shared across all starting points, so each task roots a
// traversal at most once globally, not once per component; ties between
// equal-length paths go to the first path discovered (roots are tried in task
// insertion order). This is a node-count longest path, not a
// duration-weighted critical path.
func (h *Hierarchy) CriticalPath(eventID string) []string {
	visited := make(map[string]bool)
	longest := []string{}

	for _, id := range h.order {
		if h.tasks[id].EventID() != eventID || visited[id] {
			continue
		}
		path := h.longestFrom(id, visited)
		if len(path) > len(longest) {
			longest = path
		}
	}
	return longest
}

// longestFrom runs an iterative depth-first search over the reverse
// dependency index, returning the longest node-count simple path starting at
// rootID. Every node reached is added to visited so it never roots a later
// traversal; within the traversal only the current path prunes, which keeps
// paths simple and terminates on cyclic input.
func (h *Hierarchy) longestFrom(rootID string, visited map[string]bool) []string {
	type frame struct {
		id   string
		idx  int
		best []string
	}

	visited[rootID] = true
	onPath := map[string]bool{rootID: true}
	stack := []*frame{{id: rootID}}
	var result []string

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		deps := h.dependents[f.id]

		if f.idx < len(deps) {
			next := deps[f.idx]
			f.idx++
			if onPath[next] {
				continue
			}
			visited[next] = true
			onPath[next] = true
			stack = append(stack, &frame{id: next})
			continue
		}

		path := append([]string{f.id}, f.best...)
		delete(onPath, f.id)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			result = path
			break
		}
		parent := stack[len(stack)-1]
		if len(path) > len(parent.best) {
			parent.best = path
		}
	}
	return result
}

// Dependents returns a copy of the reverse-index entry for a task: the IDs
// of tasks that list it as a dependency, in edge insertion order.
func (h *Hierarchy) Dependents(taskID string) []string {
	deps := h.dependents[taskID]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Task returns the task with the given ID, if present. The record is shared
// with the engine; hosts mutate status and hours on it in place.
func (h *Hierarchy) Task(taskID string) (*models.Task, bool) {
	t, ok := h.tasks[taskID]
	return t, ok
}

// Len returns the number of tasks in the hierarchy.
func (h *Hierarchy) Len() int {
	return len(h.tasks)
}

// EventTasks returns the tasks tagged with the given event ID, in insertion
// order.
func (h *Hierarchy) EventTasks(eventID string) []*models.Task {
	var out []*models.Task
	for _, id := range h.order {
		if h.tasks[id].EventID() == eventID {
			out = append(out, h.tasks[id])
		}
	}
	return out
}

// Edge is a persisted dependency relation used when rebuilding a hierarchy
// from stored records.
type Edge struct {
	TaskID      string
	DependsOnID string
}

// FromTasks rebuilds a Hierarchy from persisted records. Tasks are inserted
// in slice order with their stored status, priority and hours; containment
// links are rebuilt from ParentID and dependency links from edges, so any
// Dependencies/Subtasks already present on the records are ignored. Edges
// whose endpoints are missing are dropped, matching AddDependency.
func FromTasks(tasks []models.Task, edges []Edge) *Hierarchy {
	h := New()
	for i := range tasks {
		t := tasks[i] // copy; the engine owns its records
		t.Dependencies = []string{}
		t.Subtasks = []string{}
		if _, exists := h.tasks[t.ID]; !exists {
			h.order = append(h.order, t.ID)
		}
		h.tasks[t.ID] = &t
	}
	for _, id := range h.order {
		t := h.tasks[id]
		if t.ParentID == "" {
			continue
		}
		if parent, ok := h.tasks[t.ParentID]; ok {
			parent.Subtasks = append(parent.Subtasks, id)
		}
	}
	for _, e := range edges {
		h.AddDependency(e.TaskID, e.DependsOnID)
	}
	return h
}
