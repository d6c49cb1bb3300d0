package models

import "testing"

func TestTaskEventID(t *testing.T) {
	task := &Task{ID: "dec_001", Metadata: map[string]string{MetaEventID: "wedding_001"}}
	if got := task.EventID(); got != "wedding_001" {
		t.Errorf("EventID() = %q, want %q", got, "wedding_001")
	}
}

func TestTaskEventIDUntagged(t *testing.T) {
	task := &Task{ID: "dec_001"}
	if got := task.EventID(); got != "" {
		t.Errorf("EventID() = %q, want empty", got)
	}

	task.Metadata = map[string]string{"other": "x"}
	if got := task.EventID(); got != "" {
		t.Errorf("EventID() with unrelated metadata = %q, want empty", got)
	}
}
