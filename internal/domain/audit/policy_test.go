package audit

import "testing"

func changedSet(cols ...string) func(string) bool {
	set := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		set[col] = struct{}{}
	}
	return func(column string) bool {
		_, ok := set[column]
		return ok
	}
}

func TestDefaultTracksNineTables(t *testing.T) {
	policy := Default()

	tables := policy.Tables()
	if len(tables) != 9 {
		t.Fatalf("Tables() len = %d, want 9 (%v)", len(tables), tables)
	}

	want := []string{
		"annotation_job", "assignment", "export_log", "file", "file_version",
		"organization", "project", "review", "user",
	}
	for i, table := range want {
		if tables[i] != table {
			t.Fatalf("Tables()[%d] = %q, want %q", i, tables[i], table)
		}
	}
}

func TestDefaultProjectSetExcludesDescription(t *testing.T) {
	policy := Default()

	cols, ok := policy.Tracked("project")
	if !ok {
		t.Fatal("Tracked(project) not found")
	}
	for _, col := range cols {
		if col == "description" {
			t.Fatal("project set must not contain description")
		}
	}

	cols, ok = policy.Tracked("organization")
	if !ok {
		t.Fatal("Tracked(organization) not found")
	}
	found := false
	for _, col := range cols {
		if col == "description" {
			found = true
		}
	}
	if !found {
		t.Fatal("organization set must contain description")
	}
}

func TestShouldTouchUntrackedTableAlwaysTouches(t *testing.T) {
	policy := Default()

	if !policy.ShouldTouch("role", changedSet()) {
		t.Fatal("ShouldTouch(role) = false, want true for untracked table")
	}
	if !policy.ShouldTouch("event_log", changedSet("anything")) {
		t.Fatal("ShouldTouch(event_log) = false, want true for untracked table")
	}
}

func TestShouldTouchMeaningfulChange(t *testing.T) {
	policy := Default()

	if !policy.ShouldTouch("project", changedSet("status")) {
		t.Fatal("ShouldTouch(project, status changed) = false, want true")
	}
	if policy.ShouldTouch("project", changedSet("description", "requirements_text")) {
		t.Fatal("ShouldTouch(project, only non-meaningful changed) = true, want false")
	}
	if !policy.ShouldTouch("project", changedSet("description", "is_active")) {
		t.Fatal("ShouldTouch(project, meaningful and non-meaningful changed) = false, want true")
	}
	if policy.ShouldTouch("user", changedSet("completed_task_count")) {
		t.Fatal("ShouldTouch(user, counter changed) = true, want false")
	}
	if policy.ShouldTouch("annotation_job", changedSet("completed_at")) {
		t.Fatal("ShouldTouch(annotation_job, completed_at changed) = true, want false")
	}
}

func TestShouldTouchIsIdempotent(t *testing.T) {
	policy := Default()
	changed := changedSet("description")

	first := policy.ShouldTouch("project", changed)
	second := policy.ShouldTouch("project", changed)
	if first != second {
		t.Fatalf("ShouldTouch not stable: first=%v second=%v", first, second)
	}
}

func TestNewPolicyDropsEmptySets(t *testing.T) {
	policy := NewPolicy(map[string][]string{
		"project": {},
		"file":    {"status"},
	})

	if _, ok := policy.Tracked("project"); ok {
		t.Fatal("empty column set must not be tracked")
	}
	if !policy.ShouldTouch("project", changedSet()) {
		t.Fatal("table with dropped empty set must behave as untracked")
	}
}

func TestChangesComparison(t *testing.T) {
	ch := NewChanges()

	ch.Set("name", "new", "old")
	if !ch.Changed("name") {
		t.Fatal("Changed(name) = false, want true")
	}

	ch.Set("status", "draft", "draft")
	if ch.Changed("status") {
		t.Fatal("Changed(status) = true for identical values")
	}

	if ch.Changed("never_set") {
		t.Fatal("Changed(never_set) = true, want false")
	}

	a := "same"
	b := "same"
	ch.Set("feedback", &a, &b)
	if ch.Changed("feedback") {
		t.Fatal("Changed(feedback) = true for equal pointer contents")
	}

	c := "other"
	ch.Set("checksum", &a, &c)
	if !ch.Changed("checksum") {
		t.Fatal("Changed(checksum) = false for different pointer contents")
	}

	ch.Set("deleted_at", &a, (*string)(nil))
	if !ch.Changed("deleted_at") {
		t.Fatal("Changed(deleted_at) = false when setting a nil column")
	}
}

func TestChangesEmpty(t *testing.T) {
	ch := NewChanges()
	if !ch.Empty() {
		t.Fatal("new Changes must be empty")
	}
	ch.Set("name", "x", "x")
	if ch.Empty() {
		t.Fatal("Changes with a set column must not be empty")
	}
	if len(ch.Values()) != 1 {
		t.Fatalf("Values() len = %d, want 1", len(ch.Values()))
	}
}
