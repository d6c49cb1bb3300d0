package hierarchy

import (
	"errors"
	"fmt"
)

// Sentinel errors for the checked engine operations.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrDependencyNotFound = errors.New("dependency task not found")
	ErrCycleDetected      = errors.New("dependency cycle detected")
)

// AddDependencyChecked is the strict variant of AddDependency: it reports
// missing endpoints and refuses an edge that would close a dependency cycle.
// On success the edge is recorded exactly as AddDependency records it.
func (h *Hierarchy) AddDependencyChecked(taskID, dependsOnID string) error {
	if _, ok := h.tasks[taskID]; !ok {
		return fmt.Errorf("add dependency %s -> %s: %w", taskID, dependsOnID, ErrTaskNotFound)
	}
	if _, ok := h.tasks[dependsOnID]; !ok {
		return fmt.Errorf("add dependency %s -> %s: %w", taskID, dependsOnID, ErrDependencyNotFound)
	}
	if taskID == dependsOnID || h.dependsOn(dependsOnID, taskID) {
		return fmt.Errorf("add dependency %s -> %s: %w", taskID, dependsOnID, ErrCycleDetected)
	}
	h.AddDependency(taskID, dependsOnID)
	return nil
}

// dependsOn reports whether from transitively depends on target, walking the
// forward dependency lists with an explicit stack.
func (h *Hierarchy) dependsOn(from, target string) bool {
	visited := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		task, ok := h.tasks[id]
		if !ok {
			continue
		}
		for _, dep := range task.Dependencies {
			if dep == target {
				return true
			}
			stack = append(stack, dep)
		}
	}
	return false
}

// DetectCycle returns the task IDs of a dependency cycle if one exists, in
// forward order, or nil if the graph is acyclic. Detection is deterministic:
// roots are tried in task insertion order.
func (h *Hierarchy) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	type frame struct {
		id  string
		idx int
	}

	color := make(map[string]int)
	parent := make(map[string]string)

	for _, root := range h.order {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{id: root}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			task, ok := h.tasks[f.id]
			if !ok || f.idx >= len(task.Dependencies) {
				color[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := task.Dependencies[f.idx]
			f.idx++

			switch color[next] {
			case gray:
				cycle := []string{next, f.id}
				cur := f.id
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			case white:
				parent[next] = f.id
				color[next] = gray
				stack = append(stack, frame{id: next})
			}
		}
	}
	return nil
}
