package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/celebrationpro/celebro/internal/hierarchy"
	"github.com/celebrationpro/celebro/internal/models"
	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/celebrationpro/celebro/internal/store"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task to an event",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an event's tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Set task status (pending, in_progress, completed, blocked)",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskDepCmd = &cobra.Command{
	Use:   "dep [task-id] [depends-on-task-id]",
	Short: "Record that a task depends on another",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskDep,
}

var taskHoursCmd = &cobra.Command{
	Use:   "hours [task-id] [hours]",
	Short: "Log actual hours against a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskHours,
}

var (
	taskEvent    string
	taskID       string
	taskName     string
	taskModule   string
	taskParent   string
	taskAssignee string
	taskDue      string
	taskPriority string
	taskHours    float64
	taskStatus   string
	depStrict    bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskStatusCmd, taskDepCmd, taskHoursCmd)

	taskAddCmd.Flags().StringVar(&taskEvent, "event", "", "Owning event ID")
	taskAddCmd.Flags().StringVar(&taskID, "id", "", "Task ID (default: generated)")
	taskAddCmd.Flags().StringVar(&taskName, "name", "", "Task name (required)")
	taskAddCmd.Flags().StringVar(&taskModule, "module", "", "Module, e.g. decoration, lighting, catering (required)")
	taskAddCmd.Flags().StringVar(&taskParent, "parent", "", "Parent task ID")
	taskAddCmd.Flags().StringVar(&taskAssignee, "assignee", "", "Assignee")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "", "Priority (low, medium, high, critical)")
	taskAddCmd.Flags().Float64Var(&taskHours, "hours", 0, "Estimated hours")
	taskAddCmd.MarkFlagRequired("name")
	taskAddCmd.MarkFlagRequired("module")

	taskListCmd.Flags().StringVar(&taskEvent, "event", "", "Event ID")
	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (pending, in_progress, completed, blocked)")

	taskDepCmd.Flags().BoolVar(&depStrict, "strict", false, "Reject edges with missing tasks or that close a cycle")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	eventID, err := resolveEvent(taskEvent, cfg)
	if err != nil {
		return err
	}
	p := planner.New(s)
	if _, err := p.Event(eventID); err != nil {
		return err
	}

	var due time.Time
	if taskDue != "" {
		due, err = time.Parse("2006-01-02", taskDue)
		if err != nil {
			return fmt.Errorf("parse due date: %w", err)
		}
	}

	var priority models.TaskPriority
	if taskPriority != "" {
		priority, err = parsePriority(taskPriority)
		if err != nil {
			return err
		}
	}

	assignee := taskAssignee
	if assignee == "" {
		assignee = cfg.DefaultAssignee
	}

	task, err := s.CreateTask(store.CreateTaskInput{
		ID:             taskID,
		EventID:        eventID,
		Name:           taskName,
		Module:         taskModule,
		ParentID:       taskParent,
		Assignee:       assignee,
		DueDate:        due,
		Priority:       priority,
		EstimatedHours: taskHours,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	eventID, err := resolveEvent(taskEvent, cfg)
	if err != nil {
		return err
	}

	p := planner.New(s)
	h, err := p.Build(eventID)
	if err != nil {
		return err
	}

	tasks := h.EventTasks(eventID)
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODULE\tASSIGNEE\tSTATUS\tPROGRESS\tREADY")
	for _, t := range tasks {
		if taskStatus != "" && string(t.Status) != taskStatus {
			continue
		}
		ready := ""
		if t.Status == models.TaskStatusPending && h.CanStart(t.ID) {
			ready = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
			t.ID, truncate(t.Name, 40), t.Module, t.Assignee, t.Status, h.Progress(t.ID), ready)
	}
	w.Flush()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := s.GetTask(args[0])
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", args[0], planner.ErrTaskNotFound)
	}

	p := planner.New(s)
	h, err := p.Build(task.EventID())
	if err != nil {
		return err
	}

	fmt.Printf("ID:        %s\n", task.ID)
	fmt.Printf("Name:      %s\n", task.Name)
	fmt.Printf("Module:    %s\n", task.Module)
	fmt.Printf("Event:     %s\n", task.EventID())
	if task.ParentID != "" {
		fmt.Printf("Parent:    %s\n", task.ParentID)
	}
	if task.Assignee != "" {
		fmt.Printf("Assignee:  %s\n", task.Assignee)
	}
	if !task.DueDate.IsZero() {
		fmt.Printf("Due:       %s\n", task.DueDate.Format("2006-01-02"))
	}
	fmt.Printf("Status:    %s\n", task.Status)
	fmt.Printf("Priority:  %s\n", task.Priority)
	fmt.Printf("Estimated: %.1fh\n", task.EstimatedHours)
	fmt.Printf("Actual:    %.1fh\n", task.ActualHours)
	fmt.Printf("Progress:  %.0f%%\n", h.Progress(task.ID))

	if loaded, ok := h.Task(task.ID); ok {
		if len(loaded.Dependencies) > 0 {
			fmt.Printf("Depends:   %s\n", strings.Join(loaded.Dependencies, ", "))
		}
		if len(loaded.Subtasks) > 0 {
			fmt.Printf("Subtasks:  %s\n", strings.Join(loaded.Subtasks, ", "))
		}
		if deps := h.Dependents(task.ID); len(deps) > 0 {
			fmt.Printf("Unlocks:   %s\n", strings.Join(deps, ", "))
		}
	}
	if task.Status == models.TaskStatusPending {
		fmt.Printf("Ready:     %v\n", h.CanStart(task.ID))
	}
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	status, err := parseTaskStatus(args[1])
	if err != nil {
		return err
	}

	p := planner.New(s)

	// Completion may unlock dependents; route it through the planner so
	// task_ready notifications are created.
	if status == models.TaskStatusCompleted && cfg.Notifications {
		created, err := p.CompleteTask(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Task %s completed\n", args[0])
		for _, n := range created {
			fmt.Printf("  unlocked: %s\n", n.Message)
		}
		return nil
	}

	task, err := s.GetTask(args[0])
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", args[0], planner.ErrTaskNotFound)
	}

	if err := s.UpdateTaskStatus(args[0], status); err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s\n", args[0], status)
	return nil
}

func runTaskDep(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := s.GetTask(args[0])
	if err != nil {
		return err
	}

	if depStrict {
		if task == nil {
			return fmt.Errorf("task %s: %w", args[0], hierarchy.ErrTaskNotFound)
		}
		p := planner.New(s)
		h, err := p.Build(task.EventID())
		if err != nil {
			return err
		}
		if err := h.AddDependencyChecked(args[0], args[1]); err != nil {
			return err
		}
	} else if task == nil {
		// Mirror the engine's silent no-op for unknown endpoints.
		return nil
	} else if dep, err := s.GetTask(args[1]); err != nil {
		return err
	} else if dep == nil {
		return nil
	}

	if err := s.AddDependency(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("Task %s now depends on %s\n", args[0], args[1])
	return nil
}

func runTaskHours(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	hours, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parse hours: %w", err)
	}

	task, err := s.GetTask(args[0])
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task %s: %w", args[0], planner.ErrTaskNotFound)
	}

	if err := s.RecordActualHours(args[0], hours); err != nil {
		return err
	}
	fmt.Printf("Logged %.1fh against %s (total %.1fh)\n", hours, args[0], task.ActualHours+hours)
	return nil
}

func parseTaskStatus(s string) (models.TaskStatus, error) {
	switch models.TaskStatus(s) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusBlocked:
		return models.TaskStatus(s), nil
	}
	return "", fmt.Errorf("invalid task status %q (pending, in_progress, completed, blocked)", s)
}

func parsePriority(s string) (models.TaskPriority, error) {
	switch models.TaskPriority(s) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return models.TaskPriority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q (low, medium, high, critical)", s)
}
