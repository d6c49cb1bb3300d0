package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/celebrationpro/celebro/internal/planner"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Planning queries over an event's task graph",
}

var planReadyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List start-eligible tasks",
	RunE:  runPlanReady,
}

var planProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress roll-up per top-level task",
	RunE:  runPlanProgress,
}

var planCriticalCmd = &cobra.Command{
	Use:   "critical-path",
	Short: "Show the event's critical path",
	RunE:  runPlanCritical,
}

var planCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the dependency graph for cycles",
	RunE:  runPlanCheck,
}

var planEvent string

func init() {
	planCmd.AddCommand(planReadyCmd, planProgressCmd, planCriticalCmd, planCheckCmd)
	planCmd.PersistentFlags().StringVar(&planEvent, "event", "", "Event ID")
}

// openPlanner resolves the event and builds a planner against the store.
// Callers must Close the returned store.
func openPlanner() (*planner.Planner, string, func(), error) {
	s, cfg, err := openStore()
	if err != nil {
		return nil, "", nil, err
	}
	eventID, err := resolveEvent(planEvent, cfg)
	if err != nil {
		s.Close()
		return nil, "", nil, err
	}
	p := planner.New(s)
	if _, err := p.Event(eventID); err != nil {
		s.Close()
		return nil, "", nil, err
	}
	return p, eventID, func() { s.Close() }, nil
}

func runPlanReady(cmd *cobra.Command, args []string) error {
	p, eventID, closeStore, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeStore()

	ready, err := p.Ready(eventID)
	if err != nil {
		return err
	}
	if len(ready) == 0 {
		fmt.Println("No tasks ready to start")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODULE\tASSIGNEE\tPRIORITY")
	for _, t := range ready {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, truncate(t.Name, 40), t.Module, t.Assignee, t.Priority)
	}
	w.Flush()
	return nil
}

func runPlanProgress(cmd *cobra.Command, args []string) error {
	p, eventID, closeStore, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeStore()

	roots, overall, err := p.Progress(eventID)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODULE\tPROGRESS")
	for _, r := range roots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\n", r.TaskID, truncate(r.Name, 40), r.Module, r.Progress)
	}
	w.Flush()
	fmt.Printf("\nEvent progress: %.0f%%\n", overall)
	return nil
}

func runPlanCritical(cmd *cobra.Command, args []string) error {
	p, eventID, closeStore, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeStore()

	path, err := p.CriticalPath(eventID)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	fmt.Printf("Critical path (%d tasks): %s\n", len(path), strings.Join(path, " -> "))
	return nil
}

func runPlanCheck(cmd *cobra.Command, args []string) error {
	p, eventID, closeStore, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeStore()

	cycle, err := p.CheckCycle(eventID)
	if err != nil {
		return err
	}
	if cycle == nil {
		fmt.Println("Dependency graph is acyclic")
		return nil
	}
	return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
}
