package audit

import "reflect"

// Changes is the transient change record for one pending update: for every
// column the caller intends to write, the pending value and the value the row
// held when it was loaded. It exists for the duration of a single update and
// is discarded afterwards.
type Changes struct {
	pending map[string]any
	loaded  map[string]any
}

func NewChanges() *Changes {
	return &Changes{
		pending: make(map[string]any),
		loaded:  make(map[string]any),
	}
}

// Set records an intended write of column to pending, with loaded as the
// last persisted value. Columns the caller does not set are not part of the
// update and never count as changed.
func (c *Changes) Set(column string, pending, loaded any) {
	c.pending[column] = pending
	c.loaded[column] = loaded
}

// Changed reports whether column is being written to a value different from
// the one it was loaded with. Pointer-typed JSON columns compare by contents.
func (c *Changes) Changed(column string) bool {
	pending, ok := c.pending[column]
	if !ok {
		return false
	}
	return !reflect.DeepEqual(pending, c.loaded[column])
}

// Empty reports whether the caller set no columns at all.
func (c *Changes) Empty() bool {
	return len(c.pending) == 0
}

// Values returns the pending column values as an update map. The map is the
// internal one; callers own the Changes and may extend it (the touch helper
// adds updated_at).
func (c *Changes) Values() map[string]any {
	return c.pending
}
