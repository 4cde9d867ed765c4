package audit

import "sort"

// Policy maps a table name to the set of columns whose change counts as a
// substantive update for audit-timestamp purposes. Tables absent from the
// policy are untracked: their updated_at advances on every update.
//
// A Policy is built once at startup and never mutated afterwards.
type Policy struct {
	tracked map[string]map[string]struct{}
}

// NewPolicy copies the given table -> meaningful-column mapping into an
// immutable Policy. Empty column lists are dropped (an empty set would freeze
// a table's updated_at forever, which is never intended).
func NewPolicy(tracked map[string][]string) Policy {
	m := make(map[string]map[string]struct{}, len(tracked))
	for table, cols := range tracked {
		if len(cols) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(cols))
		for _, col := range cols {
			set[col] = struct{}{}
		}
		m[table] = set
	}
	return Policy{tracked: m}
}

// Default returns the platform policy. The per-table asymmetries (the
// organization tracks description while project and file do not, the user
// tracks skill fields but not completed_task_count) are intentional product
// configuration; do not normalize them.
func Default() Policy {
	return NewPolicy(map[string][]string{
		"project":      {"status", "name", "client_pm_id", "our_pm_id", "is_active"},
		"file":         {"status", "name", "active_version_id", "is_active"},
		"file_version": {"is_active", "generation_method", "llm_model", "llm_params"},
		"user": {
			"email", "org_id", "availability", "language_expertise",
			"skill_score", "skill_level", "qa_approval_rate", "is_active",
		},
		"annotation_job": {"status", "review_status", "priority", "language", "due_date", "is_active"},
		"assignment":     {"status", "role", "user_id"},
		"review":         {"status", "feedback", "is_active"},
		"export_log":     {"status", "storage_path", "checksum"},
		"organization":   {"name", "description", "is_active"},
	})
}

// Tracked reports whether the table is under the policy and, if so, returns
// its meaningful columns sorted by name.
func (p Policy) Tracked(table string) ([]string, bool) {
	set, ok := p.tracked[table]
	if !ok {
		return nil, false
	}
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, true
}

// Tables returns every tracked table name, sorted.
func (p Policy) Tables() []string {
	tables := make([]string, 0, len(p.tracked))
	for table := range p.tracked {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// ShouldTouch decides whether an update to table advances updated_at.
// changed reports, per column, whether the pending value differs from the
// last persisted one; it is consulted only for the table's meaningful
// columns. Untracked tables always touch.
//
// The decision is pure: calling it twice over the same pending state yields
// the same answer, and it never fails the surrounding update.
func (p Policy) ShouldTouch(table string, changed func(column string) bool) bool {
	set, ok := p.tracked[table]
	if !ok {
		return true
	}
	for col := range set {
		if changed(col) {
			return true
		}
	}
	return false
}
