package hierarchy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/celebrationpro/celebro/internal/models"
)

// weddingFixture builds the four-task wedding graph used across tests:
// dec_001 (parent of dec_002), light_001 and food_001, with dec_002 and
// dec_001 both depending on light_001.
func weddingFixture() *Hierarchy {
	h := New()
	meta := func() map[string]string {
		return map[string]string{models.MetaEventID: "wedding_001"}
	}
	h.CreateTask(CreateTaskInput{ID: "dec_001", Name: "Decoration plan", Module: "decoration", Assignee: "maria", Metadata: meta()})
	h.CreateTask(CreateTaskInput{ID: "dec_002", Name: "Table setup", Module: "decoration", ParentID: "dec_001", Assignee: "maria", Metadata: meta()})
	h.CreateTask(CreateTaskInput{ID: "light_001", Name: "Lighting rig", Module: "lighting", Assignee: "tom", Metadata: meta()})
	h.CreateTask(CreateTaskInput{ID: "food_001", Name: "Catering menu", Module: "catering", Assignee: "ana", Metadata: meta()})
	h.AddDependency("dec_002", "light_001")
	h.AddDependency("dec_001", "light_001")
	return h
}

func TestCreateTaskDefaults(t *testing.T) {
	h := New()
	task := h.CreateTask(CreateTaskInput{ID: "t1", Name: "First", Module: "m", Assignee: "a"})

	if task.Status != models.TaskStatusPending {
		t.Errorf("Expected status pending, got %s", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}
	if task.ActualHours != 0 {
		t.Errorf("Expected zero actual hours, got %f", task.ActualHours)
	}
	if len(task.Dependencies) != 0 || len(task.Subtasks) != 0 {
		t.Error("Expected empty dependency and subtask lists")
	}
	if h.Len() != 1 {
		t.Errorf("Expected 1 task, got %d", h.Len())
	}
}

func TestCreateTaskParentLink(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "parent", Name: "Parent"})
	h.CreateTask(CreateTaskInput{ID: "child", Name: "Child", ParentID: "parent"})

	parent, _ := h.Task("parent")
	if !reflect.DeepEqual(parent.Subtasks, []string{"child"}) {
		t.Errorf("Expected subtasks [child], got %v", parent.Subtasks)
	}
}

func TestCreateTaskMissingParentDropped(t *testing.T) {
	h := New()
	task := h.CreateTask(CreateTaskInput{ID: "orphan", Name: "Orphan", ParentID: "nope"})

	if task.ParentID != "nope" {
		t.Errorf("Expected parent ID kept on record, got %s", task.ParentID)
	}
	if _, ok := h.Task("nope"); ok {
		t.Error("Parent should not have been created")
	}
}

func TestCreateTaskOverwriteDiscardsLinkage(t *testing.T) {
	h := weddingFixture()

	old, _ := h.Task("dec_002")
	if len(old.Dependencies) != 1 {
		t.Fatalf("Fixture expected 1 dependency on dec_002, got %d", len(old.Dependencies))
	}

	fresh := h.CreateTask(CreateTaskInput{ID: "dec_002", Name: "Table setup v2", ParentID: "dec_001"})
	if len(fresh.Dependencies) != 0 {
		t.Errorf("Overwrite should discard dependencies, got %v", fresh.Dependencies)
	}

	got, _ := h.Task("dec_002")
	if got != fresh {
		t.Error("Map entry should be replaced wholesale")
	}

	// The parent link is appended again, not de-duplicated.
	parent, _ := h.Task("dec_001")
	if !reflect.DeepEqual(parent.Subtasks, []string{"dec_002", "dec_002"}) {
		t.Errorf("Expected duplicated subtask entry, got %v", parent.Subtasks)
	}
}

func TestAddDependencyMissingEndpointNoOp(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "a", Name: "A"})

	h.AddDependency("a", "ghost")
	h.AddDependency("ghost", "a")

	task, _ := h.Task("a")
	if len(task.Dependencies) != 0 {
		t.Errorf("Expected no dependencies recorded, got %v", task.Dependencies)
	}
	if len(h.Dependents("a")) != 0 {
		t.Errorf("Expected empty reverse index, got %v", h.Dependents("a"))
	}
}

func TestAddDependencyReverseIndex(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "a", Name: "A"})
	h.CreateTask(CreateTaskInput{ID: "b", Name: "B"})

	h.AddDependency("a", "b")

	task, _ := h.Task("a")
	if !reflect.DeepEqual(task.Dependencies, []string{"b"}) {
		t.Errorf("Expected forward list [b], got %v", task.Dependencies)
	}
	if !reflect.DeepEqual(h.Dependents("b"), []string{"a"}) {
		t.Errorf("Expected reverse index [a] for b, got %v", h.Dependents("b"))
	}
}

func TestCanStartNoDependencies(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "free", Name: "Free"})

	if !h.CanStart("free") {
		t.Error("Task with no dependencies should be start-eligible")
	}
}

func TestCanStartMissingTask(t *testing.T) {
	h := New()
	if h.CanStart("ghost") {
		t.Error("Unknown task should not be start-eligible")
	}
}

func TestCanStartBlockedUntilDependencyCompletes(t *testing.T) {
	h := weddingFixture()

	if h.CanStart("dec_002") {
		t.Error("dec_002 should be blocked while light_001 is pending")
	}

	// Status mutation is the host's job; it flips the shared record in place.
	light, _ := h.Task("light_001")
	light.Status = models.TaskStatusCompleted

	if !h.CanStart("dec_002") {
		t.Error("dec_002 should be start-eligible once light_001 completes")
	}
	if !h.CanStart("dec_001") {
		t.Error("dec_001 should be start-eligible once light_001 completes")
	}
}

func TestProgressLeaf(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "leaf", Name: "Leaf"})

	if p := h.Progress("leaf"); p != 0 {
		t.Errorf("Pending leaf should be 0%%, got %f", p)
	}

	leaf, _ := h.Task("leaf")
	leaf.Status = models.TaskStatusInProgress
	if p := h.Progress("leaf"); p != 0 {
		t.Errorf("In-progress leaf should still be 0%%, got %f", p)
	}

	leaf.Status = models.TaskStatusCompleted
	if p := h.Progress("leaf"); p != 100 {
		t.Errorf("Completed leaf should be 100%%, got %f", p)
	}
}

func TestProgressUnknownTask(t *testing.T) {
	h := New()
	if p := h.Progress("ghost"); p != 0 {
		t.Errorf("Unknown task should be 0%%, got %f", p)
	}
}

func TestProgressMeanOfSubtasks(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "root", Name: "Root"})
	h.CreateTask(CreateTaskInput{ID: "done", Name: "Done", ParentID: "root"})
	h.CreateTask(CreateTaskInput{ID: "open", Name: "Open", ParentID: "root"})

	done, _ := h.Task("done")
	done.Status = models.TaskStatusCompleted

	if p := h.Progress("root"); p != 50 {
		t.Errorf("Expected 50%%, got %f", p)
	}
}

func TestProgressUnweightedByDepth(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "root", Name: "Root"})
	h.CreateTask(CreateTaskInput{ID: "simple", Name: "Simple", ParentID: "root"})
	h.CreateTask(CreateTaskInput{ID: "nested", Name: "Nested", ParentID: "root"})
	h.CreateTask(CreateTaskInput{ID: "n1", Name: "N1", ParentID: "nested"})
	h.CreateTask(CreateTaskInput{ID: "n2", Name: "N2", ParentID: "nested"})

	simple, _ := h.Task("simple")
	simple.Status = models.TaskStatusCompleted
	n1, _ := h.Task("n1")
	n1.Status = models.TaskStatusCompleted

	// simple=100, nested=(100+0)/2=50; each direct child weighs equally.
	if p := h.Progress("root"); p != 75 {
		t.Errorf("Expected 75%%, got %f", p)
	}
}

func TestProgressContainmentCycleTerminates(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "a", Name: "A"})
	h.CreateTask(CreateTaskInput{ID: "b", Name: "B", ParentID: "a"})

	// Hosts own the records; a buggy host can close a containment cycle.
	b, _ := h.Task("b")
	b.Subtasks = append(b.Subtasks, "a")

	// a -> b -> a: the cyclic hop counts as 0 and the walk terminates.
	if p := h.Progress("a"); p != 0 {
		t.Errorf("Expected 0%%, got %f", p)
	}
}

func TestCriticalPathEmptyEvent(t *testing.T) {
	h := weddingFixture()
	if path := h.CriticalPath("no_such_event"); len(path) != 0 {
		t.Errorf("Expected empty path, got %v", path)
	}
}

func TestCriticalPathWeddingScenario(t *testing.T) {
	h := weddingFixture()

	path := h.CriticalPath("wedding_001")
	if !reflect.DeepEqual(path, []string{"light_001", "dec_002"}) {
		t.Errorf("Expected [light_001 dec_002], got %v", path)
	}
}

func TestCriticalPathFollowsDependents(t *testing.T) {
	h := New()
	meta := map[string]string{models.MetaEventID: "gala"}
	h.CreateTask(CreateTaskInput{ID: "x", Name: "X", Metadata: meta})
	h.CreateTask(CreateTaskInput{ID: "y", Name: "Y", Metadata: meta})
	h.CreateTask(CreateTaskInput{ID: "z", Name: "Z", Metadata: meta})
	h.AddDependency("y", "x")
	h.AddDependency("z", "y")

	// Path grows toward dependents: x unlocks y unlocks z.
	path := h.CriticalPath("gala")
	if !reflect.DeepEqual(path, []string{"x", "y", "z"}) {
		t.Errorf("Expected [x y z], got %v", path)
	}
}

func TestCriticalPathCycleTerminates(t *testing.T) {
	h := New()
	meta := map[string]string{models.MetaEventID: "loop"}
	h.CreateTask(CreateTaskInput{ID: "a", Name: "A", Metadata: meta})
	h.CreateTask(CreateTaskInput{ID: "b", Name: "B", Metadata: meta})
	h.AddDependency("a", "b")
	h.AddDependency("b", "a")

	path := h.CriticalPath("loop")
	if len(path) != 2 {
		t.Errorf("Expected a 2-node path through the cycle, got %v", path)
	}
}

func TestAddDependencyChecked(t *testing.T) {
	h := New()
	h.CreateTask(CreateTaskInput{ID: "a", Name: "A"})
	h.CreateTask(CreateTaskInput{ID: "b", Name: "B"})
	h.CreateTask(CreateTaskInput{ID: "c", Name: "C"})

	if err := h.AddDependencyChecked("a", "ghost"); !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("Expected ErrDependencyNotFound, got %v", err)
	}
	if err := h.AddDependencyChecked("ghost", "a"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}

	if err := h.AddDependencyChecked("b", "a"); err != nil {
		t.Fatalf("AddDependencyChecked failed: %v", err)
	}
	if err := h.AddDependencyChecked("c", "b"); err != nil {
		t.Fatalf("AddDependencyChecked failed: %v", err)
	}

	if err := h.AddDependencyChecked("a", "c"); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Expected ErrCycleDetected for transitive cycle, got %v", err)
	}
	if err := h.AddDependencyChecked("a", "a"); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Expected ErrCycleDetected for self edge, got %v", err)
	}

	// The rejected edge must not be half-recorded.
	a, _ := h.Task("a")
	if len(a.Dependencies) != 0 {
		t.Errorf("Rejected edge leaked into forward list: %v", a.Dependencies)
	}
	if len(h.Dependents("c")) != 0 {
		t.Errorf("Rejected edge leaked into reverse index: %v", h.Dependents("c"))
	}
}

func TestDetectCycle(t *testing.T) {
	h := weddingFixture()
	if cycle := h.DetectCycle(); cycle != nil {
		t.Errorf("Expected acyclic fixture, got cycle %v", cycle)
	}

	// The silent path happily records a cycle; DetectCycle reports it.
	h.AddDependency("light_001", "dec_002")
	cycle := h.DetectCycle()
	if cycle == nil {
		t.Fatal("Expected a cycle to be detected")
	}
	seen := make(map[string]bool)
	for _, id := range cycle {
		seen[id] = true
	}
	if !seen["dec_002"] || !seen["light_001"] {
		t.Errorf("Cycle should involve dec_002 and light_001, got %v", cycle)
	}
}

func TestDetectCycleLongChain(t *testing.T) {
	h := New()
	for _, id := range []string{"menu", "caterer", "tasting", "contract"} {
		h.CreateTask(CreateTaskInput{ID: id, Name: id})
	}
	h.AddDependency("menu", "caterer")
	h.AddDependency("caterer", "tasting")
	h.AddDependency("tasting", "contract")
	h.AddDependency("contract", "menu")

	got := h.DetectCycle()
	want := []string{"menu", "caterer", "tasting", "contract", "menu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectCycle() = %v, want %v", got, want)
	}
}

func TestFromTasks(t *testing.T) {
	records := []models.Task{
		{ID: "venue", Name: "Book venue", Status: models.TaskStatusCompleted,
			Metadata: map[string]string{models.MetaEventID: "bday"}},
		{ID: "invites", Name: "Send invites", Status: models.TaskStatusPending,
			Metadata: map[string]string{models.MetaEventID: "bday"}},
		{ID: "invites_print", Name: "Print invites", ParentID: "invites",
			Status: models.TaskStatusPending,
			// Stale persisted linkage must be ignored and rebuilt.
			Subtasks: []string{"bogus"},
			Metadata: map[string]string{models.MetaEventID: "bday"}},
	}
	edges := []Edge{
		{TaskID: "invites", DependsOnID: "venue"},
		{TaskID: "invites", DependsOnID: "missing"}, // dropped
	}

	h := FromTasks(records, edges)

	if h.Len() != 3 {
		t.Fatalf("Expected 3 tasks, got %d", h.Len())
	}
	venue, _ := h.Task("venue")
	if venue.Status != models.TaskStatusCompleted {
		t.Errorf("Stored status should be preserved, got %s", venue.Status)
	}
	invites, _ := h.Task("invites")
	if !reflect.DeepEqual(invites.Dependencies, []string{"venue"}) {
		t.Errorf("Expected dependencies [venue], got %v", invites.Dependencies)
	}
	if !reflect.DeepEqual(invites.Subtasks, []string{"invites_print"}) {
		t.Errorf("Expected subtasks rebuilt from ParentID, got %v", invites.Subtasks)
	}
	if !h.CanStart("invites") {
		t.Error("invites should be start-eligible: its only recorded dependency is completed")
	}

	if !reflect.DeepEqual(h.Dependents("venue"), []string{"invites"}) {
		t.Errorf("Expected reverse index [invites] for venue, got %v", h.Dependents("venue"))
	}
}

func TestEventTasksInsertionOrder(t *testing.T) {
	h := weddingFixture()
	h.CreateTask(CreateTaskInput{ID: "other", Name: "Other event",
		Metadata: map[string]string{models.MetaEventID: "gala"}})

	tasks := h.EventTasks("wedding_001")
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	want := []string{"dec_001", "dec_002", "light_001", "food_001"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Expected %v, got %v", want, ids)
	}
}
